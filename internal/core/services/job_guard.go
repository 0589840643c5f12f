package services

import "sync"

// jobGuard serializes pipeline work per job: while a job's lease is held,
// neither the ingestion pipeline nor a manual re-run may start another pass
// over the same job. The guard is process-local, matching the single-writer
// deployment of the ingestion worker.
type jobGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newJobGuard() *jobGuard {
	return &jobGuard{active: make(map[string]struct{})}
}

// TryAcquire takes the job's lease. It returns false when the lease is
// already held.
func (g *jobGuard) TryAcquire(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.active[jobID]; held {
		return false
	}
	g.active[jobID] = struct{}{}
	return true
}

// Release frees the job's lease. Releasing an unheld lease is a no-op.
func (g *jobGuard) Release(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, jobID)
}
