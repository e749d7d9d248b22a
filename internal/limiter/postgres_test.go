package limiter

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestAllow_NoRowAllows(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectQuery(`SELECT blocked_until FROM login_attempts WHERE username=\$1 AND ip_hash=\$2`).
		WithArgs("alice1234", []byte("h")).
		WillReturnError(pgx.ErrNoRows)

	ok, retry, err := l.Allow(context.Background(), "alice1234", []byte("h"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, retry)
}

func TestAllow_BlockedUntilFuture(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectQuery(`SELECT blocked_until FROM login_attempts`).
		WithArgs("alice1234", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(time.Now().Add(10 * time.Minute)))

	ok, retry, err := l.Allow(context.Background(), "alice1234", []byte("h"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, retry, time.Duration(0))
}

func TestAllow_PastBlockAllows(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectQuery(`SELECT blocked_until FROM login_attempts`).
		WithArgs("alice1234", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(time.Now().Add(-time.Minute)))

	ok, _, err := l.Allow(context.Background(), "alice1234", []byte("h"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFailure_BelowThreshold(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectQuery(`INSERT INTO login_attempts .* RETURNING fail_count`).
		WithArgs("alice1234", []byte("h"), 15*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))

	blocked, _, err := l.Failure(context.Background(), "alice1234", []byte("h"))
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestFailure_ThresholdBlocks(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectQuery(`INSERT INTO login_attempts .* RETURNING fail_count`).
		WithArgs("alice1234", []byte("h"), 15*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(5))
	mock.ExpectExec(`UPDATE login_attempts SET blocked_until=\$3`).
		WithArgs("alice1234", []byte("h"), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	blocked, retry, err := l.Failure(context.Background(), "alice1234", []byte("h"))
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 15*time.Minute, retry)
}

func TestSuccess_ResetsCounters(t *testing.T) {
	mock := newMock(t)
	l := NewPG(mock, 15*time.Minute, 5, 15*time.Minute)

	mock.ExpectExec(`INSERT INTO login_attempts .* DO UPDATE SET fail_count=0`).
		WithArgs("alice1234", []byte("h")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, l.Success(context.Background(), "alice1234", []byte("h")))
}

func TestHashIP_Determinism(t *testing.T) {
	a := HashIP("1.2.3.4:123")
	b := HashIP("1.2.3.4:123")
	c := HashIP("5.6.7.8:321")
	if !bytes.Equal(a, b) {
		t.Fatalf("same input must hash equal")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("different inputs must hash differently")
	}
}
