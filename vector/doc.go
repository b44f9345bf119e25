// Package vector defines the vector index contract used for semantic recall.
//
// An Index stores fixed-dimension embeddings with string-keyed metadata and
// answers top-K similarity queries with optional metadata equality filters.
// Scores are cosine similarity in [-1, 1] (backends using a different metric
// document their range).
//
// Defining the adapter boundary explicitly — one Index implementation per
// backend, selected at construction time — removes any need to probe
// differently-shaped query methods at call time.
//
// Implementations:
//   - vector/memory: in-process index for tests and local development
//   - vector/chromem: chromem-go, a pure-Go embedded vector database
//   - vector/pgvector: PostgreSQL with the pgvector extension
package vector
