// Package inference produces typed, confidence-scored relations between
// canonical objects.
//
// Two derivation paths exist:
//   - Explicit extraction reads structured fields (actor roles, relation
//     references, shared projects) and emits relations with confidence 1.0.
//   - Similarity inference compares keyword sets (Jaccard) and averaged
//     chunk embeddings (cosine), optionally blended into a hybrid score.
//
// InferAll unions both paths and deduplicates on the (from, to, type)
// triple, with explicit relations taking precedence on conflict.
package inference
