package progress

import "context"

// persist is the tail of every mutation: write-through to the local cache
// synchronously, then trigger an asynchronous push to the remote store.
func (s *Store) persist() {
	s.writeCache()
	s.triggerSync()
}

// writeCache writes the full local snapshot synchronously. Cache failures are
// logged and masked; the in-process state remains authoritative.
func (s *Store) writeCache() {
	if s.cache == nil {
		return
	}

	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.cache.Put(snap); err != nil {
		s.logger.Error("Local cache write failed",
			"user_id", snap.Progress.UserID, "error", err)
	}
}

// triggerSync starts a background push to the remote store unless one is
// already in flight. The push reads store state at push-time, so mutations
// landing while a sync is outstanding are carried by the next one; callers
// must not assume every mutation produces its own network round-trip.
func (s *Store) triggerSync() {
	if !s.syncing.CompareAndSwap(false, true) {
		return
	}

	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		defer s.syncing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()

		s.mu.Lock()
		record := s.progress.ToRecord()
		s.mu.Unlock()

		if err := s.gateway.Save(ctx, record); err != nil {
			s.logger.Error("Progress sync failed",
				"user_id", record.UserID, "error", err)
		}
	}()
}

// WaitSync blocks until every in-flight remote push has settled. It lets
// callers and tests deterministically await persistence instead of relying
// on logged side effects.
func (s *Store) WaitSync() {
	s.syncWG.Wait()
}

// Sync forces an immediate synchronous push of the current state.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	record := s.progress.ToRecord()
	s.mu.Unlock()

	return s.gateway.Save(ctx, record)
}
