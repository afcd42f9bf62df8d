package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectStateSQL = `SELECT value FROM client_state WHERE key = $1`
	upsertStateSQL = `INSERT INTO client_state (key, value, updated_at) VALUES ($1, $2, NOW())`
	deleteStateSQL = `DELETE FROM client_state WHERE key = $1`
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, StateRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStateRepository(mock)
}

func TestStateRepository_Get(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WithArgs(KeyTheme).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("light"))

	value, ok, err := repo.Get(context.Background(), KeyTheme)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_Get_Missing(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WithArgs(KeyAccessToken).
		WillReturnError(pgx.ErrNoRows)

	value, ok, err := repo.Get(context.Background(), KeyAccessToken)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_Get_DBError(t *testing.T) {
	mock, repo := newMockRepo(t)
	dbErr := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WithArgs(KeyPersist).
		WillReturnError(dbErr)

	_, ok, err := repo.Get(context.Background(), KeyPersist)

	assert.ErrorIs(t, err, dbErr)
	assert.False(t, ok)
}

func TestStateRepository_Set(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(upsertStateSQL)).
		WithArgs(KeyAccessToken, "tok").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Set(context.Background(), KeyAccessToken, "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_Delete(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(deleteStateSQL)).
		WithArgs(KeyAccessToken).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), KeyAccessToken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStateRepository()

	_, ok, err := repo.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, KeyTheme, "dark"))
	value, ok, _ := repo.Get(ctx, KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)

	require.NoError(t, repo.Delete(ctx, KeyTheme))
	require.NoError(t, repo.Delete(ctx, KeyTheme))
	_, ok, _ = repo.Get(ctx, KeyTheme)
	assert.False(t, ok)
}
