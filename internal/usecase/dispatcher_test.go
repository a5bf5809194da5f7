package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu       sync.Mutex
	entities []string
}

func (r *recordingInvalidator) InvalidateEntities(_ context.Context, entities ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, entities...)
}

func (r *recordingInvalidator) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entities...)
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
	ids  []string
}

func (g *sequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[g.next%len(g.ids)]
	g.next++
	return id
}

func newTestDispatcher(t *testing.T, stats StatsProvider, cache CacheInvalidator, ids *sequenceIDs) (*Dispatcher, *memory.JobDispatchRepository) {
	t.Helper()

	store := memory.NewStore(nil)
	leagueRepo := memory.NewLeagueRepository(store)
	staleness := newTestStaleness(store, time.Now())
	syncSvc := NewSyncService(newTestSavers(store), stats, nil, leagueRepo, memory.NewTeamRepository(store), staleness, SyncConfig{}, logging.NewNop())
	repo := memory.NewJobDispatchRepository()

	d, err := NewDispatcher(syncSvc, repo, cache, ids, DispatcherConfig{Workers: 1, Timeout: time.Minute}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(time.Second) })
	return d, repo
}

func TestDispatcher_RunRecordsCompletedDispatch(t *testing.T) {
	t.Parallel()

	stats := NewMockStatsProvider(t)
	stats.On("FetchLeagues", mock.Anything).Return([]entity.Payload{{"id": int64(1), "tier": int64(3)}}, nil).Once()
	cache := &recordingInvalidator{}
	d, repo := newTestDispatcher(t, stats, cache, &sequenceIDs{ids: []string{"dispatch-1"}})

	result, err := d.Run(context.Background(), JobRefreshLeagues, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []string{"league"}, cache.snapshot())

	dispatch, ok, err := repo.GetByID(context.Background(), "dispatch-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jobscheduler.StatusCompleted, dispatch.Status)
	assert.Equal(t, string(JobRefreshLeagues), dispatch.JobName)
	assert.NotNil(t, dispatch.QueuedAt)
	assert.NotNil(t, dispatch.CompletedAt)
	assert.Equal(t, 1, dispatch.Summary["succeeded"])
	assert.Contains(t, dispatch.Summary, "duration_ms")
}

func TestDispatcher_RunRecordsFailure(t *testing.T) {
	t.Parallel()

	stats := NewMockStatsProvider(t)
	stats.On("FetchTeam", mock.Anything, int64(36)).Return(nil, errors.New("rate limited")).Once()
	d, repo := newTestDispatcher(t, stats, nil, &sequenceIDs{ids: []string{"dispatch-2"}})

	_, err := d.Run(context.Background(), JobRefreshTeam, 36)
	require.Error(t, err)

	dispatch, err := d.Status(context.Background(), "dispatch-2")
	require.NoError(t, err)
	assert.Equal(t, jobscheduler.StatusFailed, dispatch.Status)
	assert.Equal(t, "36", dispatch.Target)
	assert.Contains(t, dispatch.LastError, "rate limited")

	_, ok, _ := repo.GetByID(context.Background(), "dispatch-2")
	assert.True(t, ok)
}

func TestDispatcher_DispatchRunsDetached(t *testing.T) {
	t.Parallel()

	stats := NewMockStatsProvider(t)
	stats.On("FetchLeagueSeries", mock.Anything, int64(15728)).Return([]entity.Payload{}, nil).Once()
	cache := &recordingInvalidator{}
	d, _ := newTestDispatcher(t, stats, cache, &sequenceIDs{ids: []string{"dispatch-3"}})

	ctx, cancel := context.WithCancel(context.Background())
	dispatchID, err := d.Dispatch(ctx, JobRefreshLeagueSeries, 15728)
	cancel()
	require.NoError(t, err)
	require.Equal(t, "dispatch-3", dispatchID)

	require.Eventually(t, func() bool {
		dispatch, err := d.Status(context.Background(), dispatchID)
		return err == nil && dispatch.Status == jobscheduler.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, cache.snapshot(), "series")
}

func TestDispatcher_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(t, NewMockStatsProvider(t), nil, &sequenceIDs{ids: []string{"unused"}})
	ctx := context.Background()

	_, err := d.Dispatch(ctx, Job("refresh_everything"), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = d.Dispatch(ctx, JobRefreshPlayer, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = d.Run(ctx, JobRefreshTeam, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = d.Status(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = d.Status(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// deadlineDispatchRepo fails writes made on a finished context, like a SQL driver does.
type deadlineDispatchRepo struct {
	*memory.JobDispatchRepository
}

func (r deadlineDispatchRepo) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.JobDispatchRepository.UpsertEvent(ctx, event)
}

func TestDispatcher_RunRecordsTimeoutAsFailed(t *testing.T) {
	t.Parallel()

	stats := NewMockStatsProvider(t)
	stats.On("FetchLeagues", mock.Anything).Return(func(ctx context.Context) ([]entity.Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil).Once()

	store := memory.NewStore(nil)
	syncSvc := NewSyncService(newTestSavers(store), stats, nil, memory.NewLeagueRepository(store), memory.NewTeamRepository(store),
		newTestStaleness(store, time.Now()), SyncConfig{}, logging.NewNop())
	repo := deadlineDispatchRepo{memory.NewJobDispatchRepository()}
	d, err := NewDispatcher(syncSvc, repo, nil, &sequenceIDs{ids: []string{"dispatch-timeout"}},
		DispatcherConfig{Workers: 1, Timeout: 20 * time.Millisecond}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(time.Second) })

	_, err = d.Run(context.Background(), JobRefreshLeagues, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	dispatch, err := d.Status(context.Background(), "dispatch-timeout")
	require.NoError(t, err)
	assert.Equal(t, jobscheduler.StatusFailed, dispatch.Status)
	assert.Contains(t, dispatch.LastError, "deadline exceeded")
}
