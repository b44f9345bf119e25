// Package embedding defines the text embedding capability consumed by
// semantic recall.
//
// A Provider turns text into a fixed-dimension vector. The subsystem treats
// embedding as best-effort: when a provider fails, recall degrades to
// recency-based retrieval instead of failing the caller.
//
// Implementations:
//   - embedding/openai: OpenAI embeddings API
//   - embedding/langchain: adapter for langchaingo embedders
//   - embedding/hash: deterministic offline provider, no network required
package embedding
