// Package services contains the core pipeline logic: the embedder
// wrapper, the reranker, the indexer and the query pipeline. Services
// depend only on domain types and driven ports, so every collaborator
// can be replaced by a test double.
package services
