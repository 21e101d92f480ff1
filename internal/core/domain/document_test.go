package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk_RecordID(t *testing.T) {
	c := Chunk{DocumentID: "doc_1712000000000_writ", Index: 3}
	assert.Equal(t, "doc_1712000000000_writ_chunk_3", c.RecordID())
}

func TestDocumentType_Valid(t *testing.T) {
	assert.True(t, DocumentTypeLegalKnowledge.Valid())
	assert.True(t, DocumentTypeUserUploaded.Valid())
	assert.False(t, DocumentType("scratch").Valid())
	assert.False(t, DocumentType("").Valid())
}

func TestFilter_Matches(t *testing.T) {
	meta := map[string]string{
		MetaDocumentID:   "doc_1",
		MetaDocumentType: string(DocumentTypeUserUploaded),
		MetaCategory:     "contract_law",
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter matches everything", Filter{}, true},
		{"document id match", Filter{DocumentID: "doc_1"}, true},
		{"document id mismatch", Filter{DocumentID: "doc_2"}, false},
		{"type match", Filter{DocumentType: DocumentTypeUserUploaded}, true},
		{"type mismatch", Filter{DocumentType: DocumentTypeLegalKnowledge}, false},
		{"category match", Filter{Category: "contract_law"}, true},
		{"category mismatch", Filter{Category: "criminal_law"}, false},
		{
			"all fields must match",
			Filter{DocumentID: "doc_1", DocumentType: DocumentTypeLegalKnowledge},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(meta))
		})
	}
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{DocumentID: "x"}.IsZero())
	assert.False(t, Filter{DocumentType: DocumentTypeUserUploaded}.IsZero())
}
