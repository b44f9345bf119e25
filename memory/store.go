package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/memorygo/embedding"
	"github.com/smallnest/memorygo/kv"
	"github.com/smallnest/memorygo/log"
	"github.com/smallnest/memorygo/vector"
)

// Store is the thread and message store exposed to agent callers.
type Store struct {
	kv       kv.Store
	index    vector.Index
	embedder embedding.Provider
	cfg      Config
	logger   log.Logger
	pipeline *Pipeline
	recall   *recallEngine

	// in-flight vector mirror writes
	mirrors sync.WaitGroup
}

// StoreOptions configuration for the memory store
type StoreOptions struct {
	// KV is the persistence backend. Required.
	KV kv.Store

	// Vector mirrors message embeddings for semantic recall. Optional.
	Vector vector.Index

	// Embedder turns message and query text into vectors. Optional.
	Embedder embedding.Provider

	// Processors shape retrieved context before it reaches callers,
	// applied in order.
	Processors []Processor

	// Config tunes store behavior; nil means DefaultConfig.
	Config *Config
}

// NewStore creates a memory store from its capabilities.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.KV == nil {
		return nil, fmt.Errorf("%w: kv store is required", ErrValidation)
	}

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = opts.Config.clone()
	}
	cfg.normalize()

	s := &Store{
		kv:       opts.KV,
		index:    opts.Vector,
		embedder: opts.Embedder,
		cfg:      *cfg,
		logger:   cfg.Logger,
		pipeline: NewPipeline(cfg.Logger, opts.Processors...),
	}
	if s.recallEnabled() {
		s.recall = newRecallEngine(s, *cfg.SemanticRecall)
	}
	return s, nil
}

func (s *Store) recallEnabled() bool {
	return s.cfg.SemanticRecall != nil && s.index != nil && s.embedder != nil
}

// Storage key layout: <prefix>thread:<id>, <prefix>thread:<id>:messages,
// <prefix>message:<id>, <prefix>thread:<id>:working_memory,
// <prefix>resource:<id>:threads.

func (s *Store) threadKey(id string) string { return s.cfg.Prefix + "thread:" + id }

func (s *Store) messagesKey(id string) string { return s.cfg.Prefix + "thread:" + id + ":messages" }

func (s *Store) messageKey(id string) string { return s.cfg.Prefix + "message:" + id }

func (s *Store) workingMemKey(id string) string {
	return s.cfg.Prefix + "thread:" + id + ":working_memory"
}

func (s *Store) resourceKey(rid string) string { return s.cfg.Prefix + "resource:" + rid + ":threads" }

// CreateThread persists a new thread. Missing fields are generated: ID,
// CreatedAt and UpdatedAt.
func (s *Store) CreateThread(ctx context.Context, thread *Thread) (*Thread, error) {
	t := Thread{}
	if thread != nil {
		t = *thread
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.saveThread(ctx, &t); err != nil {
		return nil, err
	}
	if t.ResourceID != "" {
		if err := s.kv.ListPush(ctx, s.resourceKey(t.ResourceID), t.ID); err != nil {
			return nil, fmt.Errorf("failed to index thread %s by resource: %w", t.ID, err)
		}
	}

	s.logger.Debug("created thread %s (resource %s)", t.ID, t.ResourceID)
	return &t, nil
}

// GetThread returns a thread by ID.
func (s *Store) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	data, err := s.kv.Get(ctx, s.threadKey(threadID))
	if err != nil {
		if err == kv.ErrKeyNotFound {
			return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thread %s: %w", threadID, err)
	}
	return &t, nil
}

// ThreadUpdate carries explicit thread edits; nil fields are left unchanged.
type ThreadUpdate struct {
	Title    *string
	Metadata map[string]any
}

// UpdateThread applies an update and bumps UpdatedAt.
func (s *Store) UpdateThread(ctx context.Context, threadID string, update ThreadUpdate) (*Thread, error) {
	t, err := s.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Metadata != nil {
		t.Metadata = update.Metadata
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.saveThread(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteThread removes a thread, its messages and their vector mirrors.
// Deletion is best-effort, not transactional: a failed vector delete is
// logged and the KV deletion proceeds.
func (s *Store) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return err
	}

	ids, err := s.kv.ListRange(ctx, s.messagesKey(threadID), 0, -1)
	if err != nil {
		return fmt.Errorf("failed to list messages of thread %s: %w", threadID, err)
	}

	if s.index != nil && len(ids) > 0 {
		if err := s.index.Delete(ctx, ids); err != nil {
			s.logger.Warn("failed to delete vectors of thread %s: %v", threadID, err)
		}
	}

	for _, id := range ids {
		if err := s.kv.Delete(ctx, s.messageKey(id)); err != nil {
			return fmt.Errorf("failed to delete message %s: %w", id, err)
		}
	}
	if err := s.kv.Delete(ctx, s.messagesKey(threadID)); err != nil {
		return fmt.Errorf("failed to delete message list of thread %s: %w", threadID, err)
	}
	if err := s.kv.Delete(ctx, s.workingMemKey(threadID)); err != nil {
		return fmt.Errorf("failed to delete working memory of thread %s: %w", threadID, err)
	}
	if err := s.kv.Delete(ctx, s.threadKey(threadID)); err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", threadID, err)
	}

	s.logger.Debug("deleted thread %s with %d messages", threadID, len(ids))
	return nil
}

// ListThreadsByResource returns the threads created under a resource, newest
// first. Threads deleted since indexing are skipped.
func (s *Store) ListThreadsByResource(ctx context.Context, resourceID string) ([]Thread, error) {
	ids, err := s.kv.ListRange(ctx, s.resourceKey(resourceID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads of resource %s: %w", resourceID, err)
	}

	threads := make([]Thread, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetThread(ctx, id)
		if err != nil {
			continue
		}
		threads = append(threads, *t)
	}
	return threads, nil
}

// AddMessage appends a message to a thread. When Config.AutoCreateThread is
// set a missing thread is created on the fly; otherwise ErrNotFound is
// returned.
//
// When semantic recall is configured the message embedding is computed and
// mirrored into the vector index asynchronously; mirror failures are logged
// and never fail the append.
func (s *Store) AddMessage(ctx context.Context, threadID string, content string, role Role, msgType MessageType, metadata map[string]any) (*Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, msgType)
	}

	thread, err := s.GetThread(ctx, threadID)
	if err != nil {
		// Only a genuinely missing thread may be auto-created; read
		// failures and corrupted records propagate as hard errors.
		if !s.cfg.AutoCreateThread || !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		thread, err = s.CreateThread(ctx, &Thread{ID: threadID})
		if err != nil {
			return nil, err
		}
	}

	msg := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Type:      msgType,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	data, err := json.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.kv.Set(ctx, s.messageKey(msg.ID), data); err != nil {
		return nil, fmt.Errorf("failed to save message %s: %w", msg.ID, err)
	}
	if err := s.kv.ListPush(ctx, s.messagesKey(threadID), msg.ID); err != nil {
		return nil, fmt.Errorf("failed to append message %s to thread %s: %w", msg.ID, threadID, err)
	}

	thread.UpdatedAt = msg.CreatedAt
	if err := s.saveThread(ctx, thread); err != nil {
		return nil, err
	}

	if s.recallEnabled() {
		s.mirrors.Add(1)
		go s.mirrorMessage(msg)
	}
	return &msg, nil
}

// mirrorMessage embeds a message and upserts it into the vector index.
// Runs detached from the append path.
func (s *Store) mirrorMessage(msg Message) {
	defer s.mirrors.Done()

	ctx := context.Background()
	vec, err := s.embedder.Embed(ctx, msg.Content)
	if err != nil {
		s.logger.Warn("failed to embed message %s: %v", msg.ID, err)
		return
	}

	rec := vector.Record{ID: msg.ID, Vector: vec, Metadata: vectorMetadata(&msg)}
	if err := s.index.Upsert(ctx, []vector.Record{rec}); err != nil {
		s.logger.Warn("failed to mirror message %s into vector index: %v", msg.ID, err)
		return
	}
	s.logger.Debug("mirrored message %s into vector index", msg.ID)
}

// Sync blocks until all in-flight vector mirror writes have settled.
func (s *Store) Sync() {
	s.mirrors.Wait()
}

// Close waits for background work to finish. The injected backends are owned
// by the caller and are not closed here.
func (s *Store) Close() error {
	s.Sync()
	return nil
}

// GetMessagesOptions tunes retrieval. The zero value returns the configured
// default window of most recent messages.
type GetMessagesOptions struct {
	// Limit caps the number of recent messages. Default Config.LastMessages.
	Limit int

	// SemanticQuery biases retrieval toward relevant prior messages when
	// semantic recall is configured.
	SemanticQuery string

	// Before and After bound retrieval with exclusive message-ID cursors.
	Before string
	After  string
}

// GetMessages returns messages for a thread in chronological order, shaped
// by the processor pipeline. With a SemanticQuery and recall configured it
// returns relevant prior messages plus surrounding context; otherwise the
// most recent Limit messages.
func (s *Store) GetMessages(ctx context.Context, threadID string, opts *GetMessagesOptions) ([]Message, error) {
	if opts == nil {
		opts = &GetMessagesOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.LastMessages
	}

	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}

	chronoIDs, err := s.chronologicalIDs(ctx, threadID)
	if err != nil {
		return nil, err
	}
	chronoIDs = applyCursors(chronoIDs, opts.Before, opts.After)

	var msgs []Message
	if opts.SemanticQuery != "" && s.recall != nil {
		msgs, err = s.recall.recall(ctx, threadID, chronoIDs, opts.SemanticQuery)
		if err != nil {
			s.logger.Warn("semantic recall failed for thread %s, falling back to recency: %v", threadID, err)
			msgs = nil
		}
	}
	if msgs == nil {
		if len(chronoIDs) > limit {
			chronoIDs = chronoIDs[len(chronoIDs)-limit:]
		}
		msgs, err = s.rawMessages(ctx, chronoIDs)
		if err != nil {
			return nil, err
		}
	}

	return s.pipeline.Run(ctx, msgs), nil
}

// chronologicalIDs returns the thread's message IDs oldest first. Storage
// order is newest first (list push prepends), so the range is reversed.
func (s *Store) chronologicalIDs(ctx context.Context, threadID string) ([]string, error) {
	ids, err := s.kv.ListRange(ctx, s.messagesKey(threadID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of thread %s: %w", threadID, err)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

// rawMessages loads messages by ID in the given order, bypassing the
// processor pipeline. Used internally by recall expansion to avoid double
// processing.
func (s *Store) rawMessages(ctx context.Context, ids []string) ([]Message, error) {
	msgs := make([]Message, 0, len(ids))
	for _, id := range ids {
		data, err := s.kv.Get(ctx, s.messageKey(id))
		if err != nil {
			if err == kv.ErrKeyNotFound {
				s.logger.Warn("message %s listed but not stored, skipping", id)
				continue
			}
			return nil, fmt.Errorf("failed to load message %s: %w", id, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message %s: %w", id, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *Store) saveThread(ctx context.Context, t *Thread) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal thread %s: %w", t.ID, err)
	}
	if err := s.kv.Set(ctx, s.threadKey(t.ID), data); err != nil {
		return fmt.Errorf("failed to save thread %s: %w", t.ID, err)
	}
	return nil
}

// applyCursors trims a chronological ID slice to the exclusive (after,
// before) window. Unknown cursor IDs leave the corresponding bound open.
func applyCursors(ids []string, before, after string) []string {
	lo, hi := 0, len(ids)
	for i, id := range ids {
		if after != "" && id == after {
			lo = i + 1
		}
		if before != "" && id == before {
			hi = i
		}
	}
	if lo > hi {
		return nil
	}
	return ids[lo:hi]
}

// sortChronological orders messages oldest first by CreatedAt, stable so
// storage order breaks ties.
func sortChronological(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
