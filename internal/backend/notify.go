package backend

// Subscribe returns a channel that receives a signal whenever the
// tasks collection changes. The channel is buffered and signals are
// coalesced: a slow consumer sees at least one notification for any
// burst of writes. The channel is closed when the store closes.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notifyTasksChanged() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
