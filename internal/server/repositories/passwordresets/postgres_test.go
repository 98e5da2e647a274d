package passwordresets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^INSERT\s+INTO\s+password_resets\s*\(user_id,\s*token_hash,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)$`).
		WithArgs("u1", "h1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), "u1", "h1", time.Hour))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByHash(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^SELECT\s+id,\s*user_id,\s*expires_at,\s*used_at\s+FROM\s+password_resets\s+WHERE\s+token_hash\s*=\s*\$1$`

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(q).WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "used_at"}).AddRow("r1", "u1", exp, nil))

	got, err := repo.FindByHash(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Nil(t, got.UsedAt)

	used := time.Now()
	mock.ExpectQuery(q).WithArgs("h2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "used_at"}).AddRow("r2", "u1", exp, used))

	got, err = repo.FindByHash(context.Background(), "h2")
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)

	mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByHash(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMarkUsed(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^UPDATE\s+password_resets\s+SET\s+used_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+used_at\s+IS\s+NULL$`

	mock.ExpectExec(q).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkUsed(context.Background(), "r1"))

	mock.ExpectExec(q).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkUsed(context.Background(), "r1"), common.ErrRecoveryTokenUsed)

	mock.ExpectExec(q).WithArgs("r1").WillReturnError(errors.New("db err"))
	err := repo.MarkUsed(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
