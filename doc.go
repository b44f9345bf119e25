// MemoryGo - Conversational Memory for LLM Agents in Go
//
// MemoryGo persists turn-by-turn messages per conversation thread, retrieves a
// bounded, relevance-ranked subset of that history to fit a model's context
// window, and maintains a small persistent working-memory scratchpad per
// thread.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/memorygo
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/memorygo/embedding/hash"
//		kvmem "github.com/smallnest/memorygo/kv/memory"
//		"github.com/smallnest/memorygo/memory"
//		vecmem "github.com/smallnest/memorygo/vector/memory"
//	)
//
//	func main() {
//		store, _ := memory.NewStore(memory.StoreOptions{
//			KV:       kvmem.New(),
//			Vector:   vecmem.New(),
//			Embedder: hash.New(),
//			Config: &memory.Config{
//				SemanticRecall: &memory.SemanticRecallConfig{},
//			},
//		})
//
//		ctx := context.Background()
//		thread, _ := store.CreateThread(ctx, &memory.Thread{ResourceID: "user-1"})
//		store.AddMessage(ctx, thread.ID, "I like cats", memory.RoleUser, memory.TypeText, nil)
//
//		msgs, _ := store.GetMessages(ctx, thread.ID, &memory.GetMessagesOptions{
//			SemanticQuery: "what pets do I like?",
//		})
//		fmt.Println(len(msgs))
//	}
//
// # Packages
//
//   - memory: threads, messages, semantic recall, working memory
//   - kv: key-value store adapters (redis, sqlite, in-process)
//   - vector: vector index adapters (in-process, chromem, pgvector)
//   - embedding: embedding providers (openai, langchain, deterministic hash)
//   - processor: context-shaping transforms (token budget, dedup, ranking, ...)
//   - log: pluggable logging
package memorygo
