// Package batch runs the scoring pipeline over many supplier files with a
// worker pool and aggregates the results into a single run.
package batch

import (
	"sync"
	"time"
)

// Progress tracks a running batch scoring operation.
type Progress struct {
	mu sync.RWMutex

	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	TotalRows      int

	CurrentFile string
	Status      string

	StartedAt time.Time
	UpdatedAt time.Time

	onUpdate func(*Progress)
}

// NewProgress creates a progress tracker for totalFiles inputs.
func NewProgress(totalFiles int) *Progress {
	return &Progress{
		TotalFiles: totalFiles,
		Status:     "pending",
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// SetOnUpdate sets a callback invoked on every update.
func (p *Progress) SetOnUpdate(fn func(*Progress)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Start marks the run as started.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = "running"
	p.StartedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// SetCurrentFile updates the file currently being processed.
func (p *Progress) SetCurrentFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CurrentFile = path
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// RecordFile records one processed file and its row count.
func (p *Progress) RecordFile(rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ProcessedFiles++
	p.TotalRows += rows
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// RecordFailed records one failed file.
func (p *Progress) RecordFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ProcessedFiles++
	p.FailedFiles++
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// Complete marks the run as finished.
func (p *Progress) Complete(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if success {
		p.Status = "completed"
	} else {
		p.Status = "failed"
	}
	p.CurrentFile = ""
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// Cancel marks the run as cancelled.
func (p *Progress) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = "cancelled"
	p.UpdatedAt = time.Now()
	p.notifyUpdate()
}

// Snapshot returns a copy of the current progress state.
func (p *Progress) Snapshot() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Progress{
		TotalFiles:     p.TotalFiles,
		ProcessedFiles: p.ProcessedFiles,
		FailedFiles:    p.FailedFiles,
		TotalRows:      p.TotalRows,
		CurrentFile:    p.CurrentFile,
		Status:         p.Status,
		StartedAt:      p.StartedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// notifyUpdate calls the update callback. Caller must hold the lock.
func (p *Progress) notifyUpdate() {
	if p.onUpdate != nil {
		p.onUpdate(p)
	}
}
