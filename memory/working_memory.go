package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/smallnest/memorygo/kv"
)

// GetWorkingMemory returns the thread's scratchpad, lazily creating it from
// the configured template on first read. Returns (nil, nil) when working
// memory is disabled.
func (s *Store) GetWorkingMemory(ctx context.Context, threadID string) (*WorkingMemory, error) {
	if s.cfg.WorkingMemory == nil {
		return nil, nil
	}

	data, err := s.kv.Get(ctx, s.workingMemKey(threadID))
	if err == nil {
		var wm WorkingMemory
		if err := json.Unmarshal(data, &wm); err != nil {
			return nil, fmt.Errorf("failed to unmarshal working memory of thread %s: %w", threadID, err)
		}
		return &wm, nil
	}
	if err != kv.ErrKeyNotFound {
		return nil, fmt.Errorf("failed to load working memory of thread %s: %w", threadID, err)
	}

	return s.writeWorkingMemory(ctx, threadID, s.templateData())
}

// UpdateWorkingMemory overwrites the thread's scratchpad wholesale. Returns
// (nil, nil) when working memory is disabled.
func (s *Store) UpdateWorkingMemory(ctx context.Context, threadID string, data string) (*WorkingMemory, error) {
	if s.cfg.WorkingMemory == nil {
		return nil, nil
	}
	return s.writeWorkingMemory(ctx, threadID, data)
}

func (s *Store) writeWorkingMemory(ctx context.Context, threadID string, data string) (*WorkingMemory, error) {
	wm := WorkingMemory{
		ThreadID:    threadID,
		Data:        data,
		LastUpdated: time.Now().UTC(),
	}

	buf, err := json.Marshal(&wm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal working memory: %w", err)
	}
	if err := s.kv.Set(ctx, s.workingMemKey(threadID), buf); err != nil {
		return nil, fmt.Errorf("failed to save working memory of thread %s: %w", threadID, err)
	}
	return &wm, nil
}

// templateData validates a JSON-looking template and logs when it is
// malformed; the template text is used either way.
func (s *Store) templateData() string {
	tmpl := s.cfg.WorkingMemory.Template
	trimmed := strings.TrimSpace(tmpl)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if !json.Valid([]byte(trimmed)) {
			s.logger.Warn("working memory template looks like JSON but does not parse, using as text")
		}
	}
	return tmpl
}
