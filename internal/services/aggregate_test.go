package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

// memStore backs the fake repos. The mutex stands in for the row lock: every
// "transaction" holds it end to end, so same-key updates serialize exactly
// like SELECT ... FOR UPDATE does against postgres.
type memStore struct {
	mu          sync.Mutex
	stats       map[uuid.UUID]*types.ContentStats
	engagements map[string]*types.EngagementRecord
}

func newMemStore() *memStore {
	return &memStore{
		stats:       make(map[uuid.UUID]*types.ContentStats),
		engagements: make(map[string]*types.EngagementRecord),
	}
}

func engKey(userID, contentID uuid.UUID) string {
	return userID.String() + "/" + contentID.String()
}

// memTxRunner serializes attempts on the store mutex and can inject commit
// conflicts for the first failFirst attempts.
type memTxRunner struct {
	store     *memStore
	failFirst int
	attempts  int
	conflict  error
}

func (r *memTxRunner) RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.attempts++
	if r.attempts <= r.failFirst {
		return r.conflict
	}
	return fn(nil)
}

type memStatsRepo struct {
	store *memStore
}

func (f *memStatsRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error) {
	row, ok := f.store.stats[contentID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *memStatsRepo) GetByContentID(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error) {
	return f.GetForUpdate(ctx, tx, contentID)
}

func (f *memStatsRepo) GetByContentIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) ([]*types.ContentStats, error) {
	out := make([]*types.ContentStats, 0, len(contentIDs))
	for _, id := range contentIDs {
		if row, ok := f.store.stats[id]; ok {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *memStatsRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error {
	cp := *row
	f.store.stats[row.ContentID] = &cp
	return nil
}

func (f *memStatsRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error {
	cp := *row
	f.store.stats[row.ContentID] = &cp
	return nil
}

type memEngRepo struct {
	store *memStore
}

func (f *memEngRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID) (*types.EngagementRecord, error) {
	row, ok := f.store.engagements[engKey(userID, contentID)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *memEngRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.EngagementRecord, error) {
	var out []*types.EngagementRecord
	for _, row := range f.store.engagements {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *memEngRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error {
	cp := *row
	f.store.engagements[engKey(row.UserID, row.ContentID)] = &cp
	return nil
}

func (f *memEngRepo) Save(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error {
	cp := *row
	f.store.engagements[engKey(row.UserID, row.ContentID)] = &cp
	return nil
}

// raceStatsRepo simulates losing the first-row insert race: the initial
// attempt sees no row, and by the time its Create hits the unique index on
// content_id another transaction has committed a row with one view.
type raceStatsRepo struct {
	memStatsRepo
	raced bool
}

func (f *raceStatsRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error {
	if !f.raced {
		f.raced = true
		winner := *row
		winner.ID = uuid.New()
		winner.Views = 1
		f.store.stats[row.ContentID] = &winner
		return errors.New(`ERROR: duplicate key value violates unique constraint "idx_content_stats_content_id" (SQLSTATE 23505)`)
	}
	return f.memStatsRepo.Create(ctx, tx, row)
}

func newTestAggregateService(t *testing.T, runner txRunner, store *memStore) *aggregateService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &aggregateService{
		log:       log,
		runner:    runner,
		statsRepo: &memStatsRepo{store: store},
		engRepo:   &memEngRepo{store: store},
		sleep:     func(time.Duration) {},
	}
}

func TestRecordViewConcurrentSameContent(t *testing.T) {
	store := newMemStore()
	svc := newTestAggregateService(t, &memTxRunner{store: store}, store)
	contentID := uuid.New()
	userID := uuid.New()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.RecordView(context.Background(), contentID, userID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}

	stats := store.stats[contentID]
	if stats == nil || stats.Views != n {
		t.Fatalf("views after %d concurrent records: got=%+v", n, stats)
	}
	if stats.Completions != 0 {
		t.Fatalf("view must not touch completions: got=%d", stats.Completions)
	}
	rec := store.engagements[engKey(userID, contentID)]
	if rec == nil || len(rec.InteractionList()) != n {
		t.Fatalf("engagement interactions: want=%d got=%+v", n, rec)
	}
}

func TestRecordViewRetriesLostFirstRowInsert(t *testing.T) {
	store := newMemStore()
	runner := &memTxRunner{store: store}
	statsRepo := &raceStatsRepo{memStatsRepo: memStatsRepo{store: store}}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc := &aggregateService{
		log:       log,
		runner:    runner,
		statsRepo: statsRepo,
		engRepo:   &memEngRepo{store: store},
		sleep:     func(time.Duration) {},
	}
	contentID := uuid.New()
	userID := uuid.New()

	if err := svc.RecordView(context.Background(), contentID, userID); err != nil {
		t.Fatalf("RecordView after losing the insert race: %v", err)
	}
	if runner.attempts != 2 {
		t.Fatalf("attempts: want=2 got=%d", runner.attempts)
	}
	stats := store.stats[contentID]
	// Winner's view plus the retried one; nothing dropped.
	if stats == nil || stats.Views != 2 {
		t.Fatalf("views after raced first insert: want=2 got=%+v", stats)
	}
	rec := store.engagements[engKey(userID, contentID)]
	if rec == nil || len(rec.InteractionList()) != 1 {
		t.Fatalf("engagement after retry: got=%+v", rec)
	}
}

func TestRecordCompletionRetriesConflictExactlyOnce(t *testing.T) {
	store := newMemStore()
	runner := &memTxRunner{
		store:     store,
		failFirst: 2,
		conflict:  errors.New("ERROR: could not serialize access due to concurrent update"),
	}
	svc := newTestAggregateService(t, runner, store)
	contentID := uuid.New()

	err := svc.RecordCompletion(context.Background(), contentID, uuid.New(), CompletionInput{TimeSpentSeconds: 30})
	if err != nil {
		t.Fatalf("RecordCompletion after retryable conflicts: %v", err)
	}
	if runner.attempts != 3 {
		t.Fatalf("attempts: want=3 got=%d", runner.attempts)
	}
	stats := store.stats[contentID]
	if stats == nil || stats.Completions != 1 {
		t.Fatalf("retried completion must apply exactly once: got=%+v", stats)
	}
}

func TestRecordCompletionEscalatesAfterBound(t *testing.T) {
	store := newMemStore()
	runner := &memTxRunner{
		store:     store,
		failFirst: 100,
		conflict:  fmt.Errorf("deadlock detected"),
	}
	svc := newTestAggregateService(t, runner, store)

	err := svc.RecordCompletion(context.Background(), uuid.New(), uuid.New(), CompletionInput{})
	if !errors.Is(err, apperrors.ErrAnalyticsWrite) {
		t.Fatalf("want ErrAnalyticsWrite, got %v", err)
	}
	if runner.attempts != aggregateMaxAttempts {
		t.Fatalf("attempts: want=%d got=%d", aggregateMaxAttempts, runner.attempts)
	}
}

func TestRecordCompletionNonRetryableFailsFast(t *testing.T) {
	store := newMemStore()
	runner := &memTxRunner{
		store:     store,
		failFirst: 100,
		conflict:  errors.New("column does not exist"),
	}
	svc := newTestAggregateService(t, runner, store)

	err := svc.RecordView(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, apperrors.ErrAnalyticsWrite) {
		t.Fatalf("want ErrAnalyticsWrite, got %v", err)
	}
	if runner.attempts != 1 {
		t.Fatalf("non-retryable errors must not retry: attempts=%d", runner.attempts)
	}
}

func TestRecordCompletionRunningAverages(t *testing.T) {
	store := newMemStore()
	svc := newTestAggregateService(t, &memTxRunner{store: store}, store)
	contentID := uuid.New()
	userID := uuid.New()
	ctx := context.Background()

	rate := func(v float64) *float64 { return &v }
	inputs := []CompletionInput{
		{TimeSpentSeconds: 30, Rating: rate(4)},
		{TimeSpentSeconds: 60},
		{TimeSpentSeconds: 90, Rating: rate(5), StruggledSectionIDs: []string{"s1", "s2"}},
	}
	for _, in := range inputs {
		if err := svc.RecordCompletion(ctx, contentID, userID, in); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	stats := store.stats[contentID]
	if stats.Completions != 3 {
		t.Fatalf("completions: want=3 got=%d", stats.Completions)
	}
	if stats.Views != 3 {
		t.Fatalf("views must track completions up: want=3 got=%d", stats.Views)
	}
	if stats.AverageTimeSpent != 60 {
		t.Fatalf("average time spent: want=60 got=%v", stats.AverageTimeSpent)
	}
	// Rating mean over the two rated completions only.
	if stats.DifficultyRating != 4.5 {
		t.Fatalf("difficulty rating: want=4.5 got=%v", stats.DifficultyRating)
	}
	if got := stats.RatingList(); len(got) != 2 {
		t.Fatalf("stored ratings: want=2 got=%v", got)
	}
	if got := stats.StruggledSectionList(); len(got) != 2 {
		t.Fatalf("struggled sections: want=2 got=%v", got)
	}

	rec := store.engagements[engKey(userID, contentID)]
	if rec.EndedAt == nil || rec.ProgressPercent != 100 {
		t.Fatalf("completion must close the engagement: got=%+v", rec)
	}
	if rec.TimeSpentSeconds != 180 {
		t.Fatalf("accumulated time spent: want=180 got=%d", rec.TimeSpentSeconds)
	}
}

func TestRecordViewThenCompletionKeepsInvariant(t *testing.T) {
	store := newMemStore()
	svc := newTestAggregateService(t, &memTxRunner{store: store}, store)
	contentID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := svc.RecordView(ctx, contentID, uuid.New()); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := svc.RecordCompletion(ctx, contentID, uuid.New(), CompletionInput{TimeSpentSeconds: 10}); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	stats := store.stats[contentID]
	if stats.Views != 10 || stats.Completions != 2 {
		t.Fatalf("want views=10 completions=2, got views=%d completions=%d", stats.Views, stats.Completions)
	}
	if stats.Views < stats.Completions {
		t.Fatalf("views below completions: %d < %d", stats.Views, stats.Completions)
	}
}

func TestAggregateInputValidation(t *testing.T) {
	store := newMemStore()
	runner := &memTxRunner{store: store}
	svc := newTestAggregateService(t, runner, store)
	ctx := context.Background()
	bad := -1.0
	high := 6.0

	cases := []struct {
		name string
		call func() error
	}{
		{"view nil content", func() error { return svc.RecordView(ctx, uuid.Nil, uuid.New()) }},
		{"view nil user", func() error { return svc.RecordView(ctx, uuid.New(), uuid.Nil) }},
		{"completion negative time", func() error {
			return svc.RecordCompletion(ctx, uuid.New(), uuid.New(), CompletionInput{TimeSpentSeconds: -1})
		}},
		{"completion rating below range", func() error {
			return svc.RecordCompletion(ctx, uuid.New(), uuid.New(), CompletionInput{Rating: &bad})
		}},
		{"completion rating above range", func() error {
			return svc.RecordCompletion(ctx, uuid.New(), uuid.New(), CompletionInput{Rating: &high})
		}},
	}
	for _, tc := range cases {
		if err := tc.call(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%s: want ErrValidation got %v", tc.name, err)
		}
	}
	if runner.attempts != 0 {
		t.Fatalf("validation failures must not open a transaction: attempts=%d", runner.attempts)
	}
}

func TestRunningMean(t *testing.T) {
	mean := 0.0
	samples := []float64{10, 20, 60}
	for i, v := range samples {
		mean = runningMean(mean, int64(i), v)
	}
	if mean != 30 {
		t.Fatalf("running mean: want=30 got=%v", mean)
	}
}

func TestUnionStrings(t *testing.T) {
	got := unionStrings([]string{"a", "b"}, []string{"b", "c", "a", "d"})
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("union: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("union[%d]: want=%s got=%s", i, want[i], got[i])
		}
	}
}
