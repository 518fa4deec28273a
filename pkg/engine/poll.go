package engine

import (
	"context"
	"time"
)

// StartPolling re-fetches the review payload on the configured interval
// until ctx is canceled, approximating real-time collaboration. Poll
// results reach the store only through the merge policy: while a gesture is
// active the fresh annotation set is dropped, so polling never clobbers an
// in-flight optimistic mutation. Version metadata is applied regardless.
func (s *Session) StartPolling(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					s.logger.Warn("poll refresh failed", "error", err)
				}
			}
		}
	}()
}

// Refresh performs one poll step. It never touches the store directly; the
// fresh set goes through the merge policy with the live gesture flag.
func (s *Session) Refresh(ctx context.Context) error {
	versionID := s.versions.Current().ID
	rev, err := s.backend.Review(ctx, versionID)
	if err != nil {
		return err
	}
	s.versions.Apply(rev)

	fresh, err := s.backend.Comments(ctx, versionID)
	if err != nil {
		return err
	}
	if accepted := s.store.Merge(fresh, s.machine.Active()); !accepted {
		s.logger.Debug("poll merge suspended during gesture", "phase", s.machine.Phase())
	}
	return nil
}
