package taskgate

// Reporter exposes the read-only task queries that callers use to track
// and inspect submissions. It never mutates registry state.
type Reporter struct {
	reg *Registry
}

// NewReporter creates a Reporter over the given registry.
func NewReporter(reg *Registry) *Reporter {
	return &Reporter{reg: reg}
}

// GetTaskStatus returns the record for a single task id.
func (r *Reporter) GetTaskStatus(id string) (Record, error) {
	return r.reg.Get(id)
}

// TaskHistory returns the retained terminal records, newest first, bounded
// by the registry's history capacity.
func (r *Reporter) TaskHistory() []Record {
	return r.reg.Recent(0)
}

// GetRunningTasks returns all pending and running records ordered by
// creation time ascending, reflecting FIFO visibility into the admission
// queue. A record in a terminal state is never returned.
func (r *Reporter) GetRunningTasks() []Record {
	return r.reg.Active()
}

// Stats returns a snapshot of registry state counts.
func (r *Reporter) Stats() Stats {
	return r.reg.Stats()
}
