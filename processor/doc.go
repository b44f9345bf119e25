// Package processor provides the canonical context-shaping processors that
// run inside a memory.Pipeline.
//
// Processors transform the retrieved message list before it reaches the
// caller: trimming to a token budget, dropping duplicates and tool noise,
// ranking by priority, summarizing old history, and annotating messages with
// temporal, entity, and sentiment information. Each processor implements
// memory.Processor and is composed through memory.NewPipeline or
// memory.StoreOptions.Processors:
//
//	store, err := memory.NewStore(memory.StoreOptions{
//		KV: kvredis,
//		Processors: []memory.Processor{
//			processor.NewToolCallFilter(nil),
//			processor.NewDuplicateDetector(0.8, true),
//			processor.NewTokenLimiter(processor.TokenLimiterOptions{Limit: 4000}),
//		},
//	})
//
// Processors never mutate their input slice; messages they change are cloned
// first. A processor that fails is skipped by the pipeline, so every
// processor here is written to degrade rather than error where possible.
package processor
