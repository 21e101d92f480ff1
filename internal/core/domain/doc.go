// Package domain contains the core business entities for the vakeel.ai
// retrieval pipeline: chunks, indexed records, retrieval candidates,
// metadata filters and query results. It has no dependencies on adapters
// or infrastructure.
package domain
