package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestTranslateError_LibPQ(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pq.Error{Code: "23505"}, ErrDuplicate},
		{"foreign key", &pq.Error{Code: "23503"}, ErrInvalidReference},
		{"wrapped unique", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translateError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateError_PGX(t *testing.T) {
	if got := translateError(&pgconn.PgError{Code: "23505"}); !errors.Is(got, ErrDuplicate) {
		t.Errorf("translateError() = %v, want ErrDuplicate", got)
	}
	if got := translateError(&pgconn.PgError{Code: "23503"}); !errors.Is(got, ErrInvalidReference) {
		t.Errorf("translateError() = %v, want ErrInvalidReference", got)
	}
}

func TestTranslateError_OtherErrorsPassThrough(t *testing.T) {
	cause := errors.New("connection reset")
	if got := translateError(cause); got != cause {
		t.Errorf("translateError() = %v, want original error", got)
	}

	checkViolation := &pq.Error{Code: "23514"}
	if got := translateError(checkViolation); got != error(checkViolation) {
		t.Errorf("translateError() = %v, want original error", got)
	}
}

func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ LookupRepository = (*PostgresLookupRepo)(nil)
	var _ ItemRepository = (*PostgresItemRepo)(nil)
}

func TestNewPostgresLookupRepos_Kind(t *testing.T) {
	if k := NewPostgresCategoryRepo(nil).Kind(); k != "category" {
		t.Errorf("category repo kind = %q", k)
	}
	if k := NewPostgresStatusRepo(nil).Kind(); k != "status" {
		t.Errorf("status repo kind = %q", k)
	}
}
