package sender

// StopListening releases the ledger connection, the fulfillment dispatch,
// and the connection monitor. Safe to call more than once; a later call to
// any quoting or payment operation re-establishes the connection.
func (s *Sender) StopListening() {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()

	if !s.connected {
		return
	}
	s.connected = false

	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	if s.monitor != nil {
		s.monitor.Stop()
		s.monitor = nil
	}
	s.hub.Stop()

	if err := s.ledger.Disconnect(); err != nil {
		s.logger.WithError(err).Warn("Failed to disconnect ledger client")
	}
}
