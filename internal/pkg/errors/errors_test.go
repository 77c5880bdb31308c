package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conflict sentinel", fmt.Errorf("update stats: %w", ErrConflict), true},
		{"serialization failure", stderrors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"), true},
		{"deadlock", stderrors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), true},
		{"sqlite busy", stderrors.New("database is locked"), true},
		{"sqlite table lock", stderrors.New("database table is locked"), true},
		{"duplicate key", stderrors.New(`ERROR: duplicate key value violates unique constraint "idx_content_stats_content_id" (SQLSTATE 23505)`), true},
		{"sqlite unique", stderrors.New("UNIQUE constraint failed: content_stats.content_id"), true},
		{"missing column", stderrors.New(`ERROR: column "viewz" does not exist`), false},
		{"not found", fmt.Errorf("stats row: %w", ErrNotFound), false},
		{"validation", fmt.Errorf("bad rating: %w", ErrValidation), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}
