// Package log provides pluggable logging for MemoryGo.
//
// The memory subsystem treats many failures as best-effort (vector mirror
// writes, recall fallback strategies, working-memory template parsing) and
// reports them through a Logger instead of returning errors. The default
// logger is backed by kataras/golog; a NoOpLogger is available for callers
// that want the subsystem silent.
//
// # Usage
//
//	import "github.com/smallnest/memorygo/log"
//
//	// Use the package-level default logger
//	log.Info("thread %s created", threadID)
//
//	// Or install your own
//	log.SetDefault(log.NewNoOpLogger())
package log
