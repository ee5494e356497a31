package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

func TestWrapErrorTaxonomy(t *testing.T) {
	s := NewPostgres(nil, 0)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, auth.ErrNoSuchUser},
		{"unique violation", &pq.Error{Code: "23505"}, auth.ErrDuplicateKey},
		{"foreign key violation", &pq.Error{Code: "23503"}, auth.ErrNoSuchUser},
		{"deadline", context.DeadlineExceeded, auth.ErrAuthUnavailable},
		{"canceled", context.Canceled, auth.ErrAuthUnavailable},
		{"driver failure", errors.New("pq: connection refused"), auth.ErrAuthUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.wrap("op", tt.err), tt.want)
		})
	}

	assert.NoError(t, s.wrap("op", nil))
}

func TestWrapForeignKeyViolationWrapped(t *testing.T) {
	s := NewPostgres(nil, 0)

	// Linking a provider to an id with no users row surfaces as a
	// missing user, not a backend outage, even through extra wrapping.
	err := s.wrap("update", fmt.Errorf("exec: %w", &pq.Error{Code: "23503"}))
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)
	assert.NotErrorIs(t, err, auth.ErrAuthUnavailable)
}
