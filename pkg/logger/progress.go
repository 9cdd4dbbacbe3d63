package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker reports row-by-row progress for long-running operations
// such as bulk credential issuance.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int
	current     int
	failed      int
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.Mutex
}

// NewProgressTracker creates a tracker for an operation over total items.
func NewProgressTracker(operation string, total int, log Logger) *ProgressTracker {
	if log == nil {
		log = GetGlobalLogger()
	}
	tracker := &ProgressTracker{
		logger:      log.WithComponent("progress"),
		operation:   operation,
		total:       total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: 2 * time.Second,
	}
	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")
	return tracker
}

// Increment records one finished item; failed marks it as unsuccessful.
func (p *ProgressTracker) Increment(failed bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current++
	if failed {
		p.failed++
	}

	now := time.Now()
	if now.Sub(p.lastLogTime) >= p.logInterval {
		p.logger.WithFields(Fields{
			"operation": p.operation,
			"processed": p.current,
			"total":     p.total,
			"failed":    p.failed,
		}).Info("Operation in progress")
		p.lastLogTime = now
	}
}

// Complete logs final statistics for the operation.
func (p *ProgressTracker) Complete() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	duration := time.Since(p.startTime)
	rate := float64(p.current) / duration.Seconds()
	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"failed":    p.failed,
		"duration":  duration.String(),
		"rate":      fmt.Sprintf("%.2f/sec", rate),
	}).Info("Operation completed")
}
