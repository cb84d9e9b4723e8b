package terminal

import (
	"sync"

	"ethicalpulse/dashboard/internal/model"
)

// Results is the in-process history of tool results, newest first.
type Results struct {
	mu    sync.RWMutex
	items []model.ToolResult
}

func (r *Results) Record(result model.ToolResult) {
	r.mu.Lock()
	r.items = append([]model.ToolResult{result}, r.items...)
	r.mu.Unlock()
}

func (r *Results) List() []model.ToolResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ToolResult, len(r.items))
	copy(out, r.items)
	return out
}
