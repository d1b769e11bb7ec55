// Package retrieval orchestrates query answering: embedding the query,
// vector search over chunks, parent object resolution, relation
// inference, optional graph expansion, and optional recency reranking.
//
// The Retriever is stateless per request; independent retrievals may run
// concurrently against a shared store. Timing statistics in the result
// are observational only.
package retrieval
