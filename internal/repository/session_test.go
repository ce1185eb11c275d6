package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestEnforceSessionLimitBelowCap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions" WHERE user_id = \$1`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	require.NoError(t, repo.EnforceSessionLimit(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnforceSessionLimitEvictsOldest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions" WHERE user_id = \$1`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	mock.ExpectExec(`DELETE FROM "sessions" WHERE id = \(SELECT .?id.? FROM "sessions" WHERE user_id = \$1 ORDER BY created_at ASC LIMIT \$2\)`).
		WithArgs(uint(7), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.EnforceSessionLimit(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByTokenScansHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	token := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)
	otherHash, err := bcrypt.GenerateFromPassword([]byte("something-else"), bcrypt.MinCost)
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "sessions" WHERE expires_at > \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "refresh_token_hash", "expires_at"}).
			AddRow("session-1", 3, string(otherHash), expiry).
			AddRow("session-2", 7, string(hash), expiry))

	session, err := repo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "session-2", session.ID)
	assert.Equal(t, uint(7), session.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByTokenNoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "sessions" WHERE expires_at > \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "refresh_token_hash", "expires_at"}))

	_, err := repo.FindByToken(context.Background(), "unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`DELETE FROM "sessions" WHERE expires_at <= \$1`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
