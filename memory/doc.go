// Package memory implements conversational memory for LLM agents: threads of
// persisted messages, semantic recall over them, and a per-thread working
// memory scratchpad.
//
// The Store is the single entry point. It is built from three capabilities
// injected at construction time:
//
//   - a kv.Store for thread and message persistence (required)
//   - a vector.Index for message embeddings (optional, enables semantic recall)
//   - an embedding.Provider to turn text into vectors (optional, same)
//
// # Retrieval
//
// GetMessages returns the most recent messages for a thread, or — when a
// semantic query is supplied and recall is configured — the most relevant
// prior messages plus their neighbors, always in chronological order. The
// result then flows through the configured processor pipeline before being
// returned, so callers receive context that already fits their budget.
//
// # Failure model
//
// KV primitive failures are hard errors. Everything around them degrades
// gracefully: vector mirror writes are fire-and-forget, a dead embedding
// provider turns semantic recall into recency retrieval, and an unreachable
// vector index falls back to a deterministic text-overlap scorer. A recall
// query against a non-empty thread never comes back empty.
//
// # Example
//
//	store, err := memory.NewStore(memory.StoreOptions{
//		KV:       kvredis.NewRedisStore(kvredis.RedisOptions{Addr: "localhost:6379"}),
//		Vector:   vecmem.New(),
//		Embedder: hash.New(),
//		Config: &memory.Config{
//			LastMessages:   20,
//			SemanticRecall: &memory.SemanticRecallConfig{TopK: 5},
//		},
//		Processors: []memory.Processor{
//			processor.NewTokenLimiter(processor.TokenLimiterOptions{Limit: 4000}),
//		},
//	})
package memory
