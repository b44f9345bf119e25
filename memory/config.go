package memory

import (
	"github.com/smallnest/memorygo/log"
)

// Config tunes Store behavior. Zero values are filled with defaults by
// NewStore, except AutoCreateThread which is honored as given (DefaultConfig
// enables it).
type Config struct {
	// Prefix namespaces every storage key. Default "memorygo:".
	Prefix string

	// LastMessages is the default retrieval window. Default 20.
	LastMessages int

	// AutoCreateThread makes AddMessage create a missing thread instead of
	// returning ErrNotFound.
	AutoCreateThread bool

	// SemanticRecall enables embedding-based retrieval when non-nil and a
	// vector index plus embedding provider are configured.
	SemanticRecall *SemanticRecallConfig

	// WorkingMemory enables the per-thread scratchpad when non-nil.
	WorkingMemory *WorkingMemoryConfig

	// Logger receives best-effort failure reports. Default is the package
	// log default.
	Logger log.Logger
}

// SemanticRecallConfig tunes the recall engine.
type SemanticRecallConfig struct {
	// TopK is the number of vector candidates requested. Default 5.
	TopK int

	// MessageRange is the total context window around each hit; half of it
	// lands on each side. Default 4.
	MessageRange int

	// Threshold is the minimum similarity score to keep a hit. Default 0.7.
	Threshold float64

	// ScanLimit bounds how many recent messages the text-overlap fallback
	// scorer reads. Default 50.
	ScanLimit int
}

// WorkingMemoryConfig tunes the working memory scratchpad.
type WorkingMemoryConfig struct {
	// Template seeds the scratchpad on first read. May be free text or
	// JSON; malformed JSON templates are used verbatim and logged.
	Template string
}

// DefaultConfig returns the configuration used when StoreOptions.Config is
// nil.
func DefaultConfig() *Config {
	return &Config{
		Prefix:           "memorygo:",
		LastMessages:     20,
		AutoCreateThread: true,
	}
}

// clone copies the config deeply enough that normalize never writes through
// to the caller's struct.
func (c *Config) clone() *Config {
	out := *c
	if c.SemanticRecall != nil {
		sr := *c.SemanticRecall
		out.SemanticRecall = &sr
	}
	if c.WorkingMemory != nil {
		wm := *c.WorkingMemory
		out.WorkingMemory = &wm
	}
	return &out
}

func (c *Config) normalize() {
	if c.Prefix == "" {
		c.Prefix = "memorygo:"
	}
	if c.LastMessages <= 0 {
		c.LastMessages = 20
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.SemanticRecall != nil {
		c.SemanticRecall.normalize()
	}
}

func (c *SemanticRecallConfig) normalize() {
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.MessageRange <= 0 {
		c.MessageRange = 4
	}
	if c.Threshold <= 0 {
		c.Threshold = 0.7
	}
	if c.ScanLimit <= 0 {
		c.ScanLimit = 50
	}
}
