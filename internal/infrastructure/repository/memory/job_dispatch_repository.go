package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/esports-stats/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.Dispatch
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{items: make(map[string]jobscheduler.Dispatch)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	event.DispatchID = dispatchID

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[dispatchID] = r.items[dispatchID].Apply(event)
	return nil
}

func (r *JobDispatchRepository) GetByID(_ context.Context, dispatchID string) (jobscheduler.Dispatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[dispatchID]
	return item, ok, nil
}
