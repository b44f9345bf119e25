package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/memorygo/memory"
)

// TemporalMode selects what the temporal processor does.
type TemporalMode string

const (
	// TemporalFilter drops messages older than the recency threshold or
	// outside every configured time window.
	TemporalFilter TemporalMode = "filter"

	// TemporalGroup inserts a synthetic system header whenever the
	// time-window label changes along the chronological sequence.
	TemporalGroup TemporalMode = "group"

	// TemporalAnnotate prefixes message content with absolute and relative
	// timestamps.
	TemporalAnnotate TemporalMode = "annotate"
)

// TimeWindow labels messages by age. Windows are checked in order; the first
// one whose MaxAge covers the message wins.
type TimeWindow struct {
	Label  string
	MaxAge time.Duration
}

// DefaultTimeWindows bucket messages into conversational age groups.
var DefaultTimeWindows = []TimeWindow{
	{Label: "just now", MaxAge: 5 * time.Minute},
	{Label: "earlier", MaxAge: time.Hour},
	{Label: "today", MaxAge: 24 * time.Hour},
	{Label: "this week", MaxAge: 7 * 24 * time.Hour},
}

// TemporalOptions configuration for the temporal processor
type TemporalOptions struct {
	// Mode selects filter, group or annotate behavior. Default annotate.
	Mode TemporalMode

	// TimeWindows label messages by age. Default DefaultTimeWindows.
	TimeWindows []TimeWindow

	// RecencyThreshold drops older messages in filter mode. Zero disables
	// the age cutoff.
	RecencyThreshold time.Duration

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Temporal filters, groups or annotates messages by age.
type Temporal struct {
	opts TemporalOptions
}

var _ memory.Processor = (*Temporal)(nil)

// NewTemporal creates a temporal processor.
func NewTemporal(opts TemporalOptions) *Temporal {
	if opts.Mode == "" {
		opts.Mode = TemporalAnnotate
	}
	if opts.TimeWindows == nil {
		opts.TimeWindows = DefaultTimeWindows
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Temporal{opts: opts}
}

// Name implements memory.Processor.
func (t *Temporal) Name() string { return "temporal" }

// Process implements memory.Processor.
func (t *Temporal) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	now := t.opts.Now()
	switch t.opts.Mode {
	case TemporalFilter:
		return t.filter(messages, now), nil
	case TemporalGroup:
		return t.group(messages, now), nil
	case TemporalAnnotate:
		return t.annotate(messages, now), nil
	default:
		return nil, fmt.Errorf("unknown temporal mode %q", t.opts.Mode)
	}
}

func (t *Temporal) filter(messages []memory.Message, now time.Time) []memory.Message {
	out := make([]memory.Message, 0, len(messages))
	for _, msg := range messages {
		age := now.Sub(msg.CreatedAt)
		if t.opts.RecencyThreshold > 0 && age > t.opts.RecencyThreshold {
			continue
		}
		if t.windowLabel(age) == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (t *Temporal) group(messages []memory.Message, now time.Time) []memory.Message {
	out := make([]memory.Message, 0, len(messages))
	current := ""
	for _, msg := range messages {
		label := t.windowLabel(now.Sub(msg.CreatedAt))
		if label == "" {
			label = "older"
		}
		if label != current {
			current = label
			out = append(out, memory.Message{
				ID:        uuid.NewString(),
				ThreadID:  msg.ThreadID,
				Role:      memory.RoleSystem,
				Type:      memory.TypeText,
				Content:   "--- " + label + " ---",
				CreatedAt: msg.CreatedAt,
				Metadata:  map[string]any{"temporalHeader": true, "label": label},
			})
		}
		out = append(out, msg)
	}
	return out
}

func (t *Temporal) annotate(messages []memory.Message, now time.Time) []memory.Message {
	out := make([]memory.Message, len(messages))
	for i, msg := range messages {
		c := msg.Clone()
		c.Content = fmt.Sprintf("[%s, %s] %s",
			msg.CreatedAt.Format("2006-01-02 15:04:05"),
			relativeAge(now.Sub(msg.CreatedAt)),
			msg.Content)
		out[i] = c
	}
	return out
}

// windowLabel returns the label of the first window covering the age, or ""
// when the message is older than every window.
func (t *Temporal) windowLabel(age time.Duration) string {
	for _, w := range t.opts.TimeWindows {
		if age <= w.MaxAge {
			return w.Label
		}
	}
	return ""
}

func relativeAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
