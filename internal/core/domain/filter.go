package domain

// Filter is a typed equality predicate over indexed-record metadata.
// Only the enumerated keys can be matched; a zero field means "any value".
// Unknown keys are unrepresentable by construction.
type Filter struct {
	// DocumentID restricts matches to a single document.
	DocumentID string

	// DocumentType restricts matches to one side of the collection
	// partition (legal_knowledge or user_uploaded).
	DocumentType DocumentType

	// Category restricts matches to a reference-corpus category,
	// e.g. "criminal_law".
	Category string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.DocumentID == "" && f.DocumentType == "" && f.Category == ""
}

// Matches reports whether the given record metadata satisfies every
// non-zero field of the filter.
func (f Filter) Matches(meta map[string]string) bool {
	if f.DocumentID != "" && meta[MetaDocumentID] != f.DocumentID {
		return false
	}
	if f.DocumentType != "" && meta[MetaDocumentType] != string(f.DocumentType) {
		return false
	}
	if f.Category != "" && meta[MetaCategory] != f.Category {
		return false
	}
	return true
}
