package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"plain", errors.New("boom"), ErrorClassPermanent},
		{"pgx serialization", &pgconn.PgError{Code: "40001"}, ErrorClassSerialization},
		{"pgx deadlock wrapped", fmt.Errorf("reserve: %w", &pgconn.PgError{Code: "40P01"}), ErrorClassDeadlock},
		{"pq lock timeout", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"pq unique", &pq.Error{Code: "23505"}, ErrorClassUniqueViolation},
		{"gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), ErrorClassUniqueViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrorClassPermanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	require.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	require.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsRetryable(errors.New("boom")))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
}
