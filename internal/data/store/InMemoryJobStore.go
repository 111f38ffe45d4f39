package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore is the fallback when the redis job DB is offline. Entries
// expire after the same TTL redis applies, so status polls behave alike.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	logger   *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL)
}

func NewInMemoryJobStore(ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]storedJob),
		ttl:      ttl,
		logger:   logger_i.NewLogger("JobStore").With("backend", "memory"),
	}
}

// SaveJob refreshes the expiry on every write, like SET with EX does.
func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()

	now := time.Now()
	store.jobMap[job.Id] = storedJob{job: job, expiresAt: now.Add(store.ttl)}
	if expired := store.dropExpired(now); expired > 0 {
		store.logger.FromContext(ctx).Debug("Dropped expired jobs", "count", expired)
	}
	store.logger.FromContext(ctx).Debug("saving job", "job Id", job.Id, "status", job.Status, "step", job.CurrentStep)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	entry, found := store.jobMap[jobId]
	store.jobMutex.RUnlock()

	if found && time.Now().After(entry.expiresAt) {
		found = false
	}
	store.logger.FromContext(ctx).Debug("getting job", "job Id", jobId, "found", found)
	if !found {
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
	store.logger.FromContext(ctx).Debug("Job deleted", "job Id", jobID)
}

// caller holds the write lock
func (store *InMemoryJobStore) dropExpired(now time.Time) int {
	n := 0
	for id, entry := range store.jobMap {
		if now.After(entry.expiresAt) {
			delete(store.jobMap, id)
			n++
		}
	}
	return n
}
