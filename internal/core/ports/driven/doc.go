// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding client, the generation
// service, the reranker scorer, the vector store, the text extraction
// sidecar and the prompt store.
package driven
