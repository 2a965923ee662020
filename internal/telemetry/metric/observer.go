package metric

// RecordInserted implements memory.Observer.
func (r *Registry) RecordInserted(store string) {
	r.RecordsInserted.WithLabelValues(store).Inc()
}

// RecordReleased implements memory.Observer.
func (r *Registry) RecordReleased(store, reason string) {
	r.RecordsReleased.WithLabelValues(store, reason).Inc()
}

// RecordsLive implements memory.Observer.
func (r *Registry) RecordsLive(store string, n int) {
	r.LiveRecords.WithLabelValues(store).Set(float64(n))
}

// Compacted implements memory.Observer.
func (r *Registry) Compacted(store string, removed int) {
	r.SlotsCompacted.WithLabelValues(store).Add(float64(removed))
}

// ProtocolViolation implements boundary.Observer.
func (r *Registry) ProtocolViolation(kind string) {
	r.ProtocolViolated.WithLabelValues(kind).Inc()
}

// SessionCreated implements service.SessionObserver.
func (r *Registry) SessionCreated() { r.SessionsCreated.Inc() }

// SessionExpired implements service.SessionObserver.
func (r *Registry) SessionExpired() { r.SessionsExpired.Inc() }

// SessionRevoked implements service.SessionObserver.
func (r *Registry) SessionRevoked() { r.SessionsRevoked.Inc() }

// SessionsActiveChanged implements service.SessionObserver.
func (r *Registry) SessionsActiveChanged(n int) {
	r.SessionsActive.Set(float64(n))
}

// TickCompleted implements service.MaintenanceObserver.
func (r *Registry) TickCompleted(day int, failed bool) {
	r.Ticks.Inc()
	r.LastDay.Set(float64(day))
	if failed {
		r.TickErrors.Inc()
	}
}
