// Package relato aggregates normalized records from collaboration tools
// and answers natural-language queries by combining vector similarity
// search over text chunks with a graph of inferred relations between the
// source objects.
//
// The library is organized around three cores: the relation inferrer
// (pkg/inference) decides which objects are related, explicitly or by
// similarity; the retriever (pkg/retrieval) orchestrates embedding-based
// chunk search, graph expansion and recency reranking; and the evaluator
// (pkg/evaluation) scores inferred relations against curated ground truth
// to drive threshold tuning. Storage backends live in pkg/store and
// embedding providers in pkg/embedder.
//
// Client is the main entry point; it composes the cores over a chosen
// store and embedder. Consumers embedding relato in a larger system
// should depend on the focused interfaces in interfaces.go rather than
// the full Relato interface.
package relato
