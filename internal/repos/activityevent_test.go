package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

// newTestDB opens an in-memory sqlite database. The schema is created by
// hand: the production DDL carries postgres defaults sqlite cannot parse, and
// the repo queries only care about column names.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := `CREATE TABLE activity_event (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		occurred_at DATETIME NOT NULL,
		data TEXT,
		created_at DATETIME NOT NULL
	)`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newTestEventRepo(t *testing.T) (ActivityEventRepo, *gorm.DB) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	db := newTestDB(t)
	return NewActivityEventRepo(db, log), db
}

func seedEvent(t *testing.T, repo ActivityEventRepo, userID uuid.UUID, eventType string, at time.Time) *types.ActivityEvent {
	t.Helper()
	row := &types.ActivityEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       eventType,
		OccurredAt: at,
		CreatedAt:  at,
	}
	if _, err := repo.Create(context.Background(), nil, []*types.ActivityEvent{row}); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return row
}

func TestActivityEventGetByUserIDDescending(t *testing.T) {
	repo, _ := newTestEventRepo(t)
	userID := uuid.New()
	base := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	seedEvent(t, repo, userID, types.EventTypeChat, base.Add(-2*time.Hour))
	seedEvent(t, repo, userID, types.EventTypeLogin, base)
	seedEvent(t, repo, userID, types.EventTypeChat, base.Add(-time.Hour))
	seedEvent(t, repo, uuid.New(), types.EventTypeChat, base)

	got, err := repo.GetByUserID(context.Background(), nil, userID, EventFilter{})
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].OccurredAt.After(got[i-1].OccurredAt) {
			t.Fatalf("rows out of order at %d: %v after %v", i, got[i].OccurredAt, got[i-1].OccurredAt)
		}
	}
	if got[0].Type != types.EventTypeLogin {
		t.Fatalf("newest first: want=login got=%s", got[0].Type)
	}
}

func TestActivityEventFilters(t *testing.T) {
	repo, _ := newTestEventRepo(t)
	userID := uuid.New()
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	seedEvent(t, repo, userID, types.EventTypeChat, base)
	seedEvent(t, repo, userID, types.EventTypeChat, base.AddDate(0, 0, 1))
	seedEvent(t, repo, userID, types.EventTypeLogin, base.AddDate(0, 0, 1))
	seedEvent(t, repo, userID, types.EventTypeChat, base.AddDate(0, 0, 2))

	ctx := context.Background()

	byType, err := repo.GetByUserID(ctx, nil, userID, EventFilter{Type: types.EventTypeLogin})
	if err != nil {
		t.Fatalf("type filter: %v", err)
	}
	if len(byType) != 1 || byType[0].Type != types.EventTypeLogin {
		t.Fatalf("type filter rows: got=%d", len(byType))
	}

	// [From, To): the To day itself is excluded.
	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 2)
	ranged, err := repo.GetByUserID(ctx, nil, userID, EventFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("range filter: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("range rows: want=2 got=%d", len(ranged))
	}

	paged, err := repo.GetByUserID(ctx, nil, userID, EventFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("paging: %v", err)
	}
	if len(paged) != 2 {
		t.Fatalf("paged rows: want=2 got=%d", len(paged))
	}
	if paged[0].OccurredAt.Equal(base.AddDate(0, 0, 2)) {
		t.Fatalf("offset must skip the newest row")
	}
}

func TestActivityEventCountByUserID(t *testing.T) {
	repo, _ := newTestEventRepo(t)
	userID := uuid.New()
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		seedEvent(t, repo, userID, types.EventTypeChat, base.Add(time.Duration(i)*time.Minute))
	}
	seedEvent(t, repo, uuid.New(), types.EventTypeChat, base)

	n, err := repo.CountByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("CountByUserID: %v", err)
	}
	if n != 4 {
		t.Fatalf("count: want=4 got=%d", n)
	}

	zero, err := repo.CountByUserID(context.Background(), nil, uuid.Nil)
	if err != nil || zero != 0 {
		t.Fatalf("nil user count: want=0,nil got=%d,%v", zero, err)
	}
}

func TestActivityEventCreateEmptyBatch(t *testing.T) {
	repo, _ := newTestEventRepo(t)
	got, err := repo.Create(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty batch rows: got=%d", len(got))
	}
}
