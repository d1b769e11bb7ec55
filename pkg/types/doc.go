// Package types defines the core data model shared across relato.
//
// The central entities are:
//   - CanonicalObject: the normalized representation of one record from a
//     source platform (issue, message, document, ...).
//   - Chunk: a retrievable text slice of a canonical object carrying an
//     embedding vector.
//   - Relation: a directed, typed, confidence-scored edge between two
//     object ids. Relations are derived data and are recomputed on demand.
//   - GroundTruthRelation: a curated relation used only for evaluation.
//
// Relations carry a three-way source taxonomy:
//   - SourceExplicit: derived from structured fields, confidence 1.0.
//   - SourceInferred: derived from keyword overlap only.
//   - SourceComputed: derived with a semantic (embedding) component.
package types
