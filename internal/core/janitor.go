package core

// janitor.go removes expired upload sessions in the background.
//
// The janitor is long-running and context-aware for graceful shutdown.
// Expired files are already invisible to lookups; sweeping only frees memory.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the janitor runs when no interval is given.
const DefaultSweepInterval = time.Minute

// StartJanitor removes expired files every interval until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session janitor started", "interval", interval, "ttl", s.cfg.SessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired upload sessions removed", "files_removed", n)
			}
		}
	}
}

// Sweep removes every expired file and returns how many were removed.
func (s *Service) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sf := range s.files {
		if !now.Before(sf.ExpiresAt) {
			delete(s.files, id)
			removed++
		}
	}
	n := len(s.files)
	s.mu.Unlock()

	if removed > 0 {
		s.recorder.SessionsActive(n)
	}
	return removed
}
