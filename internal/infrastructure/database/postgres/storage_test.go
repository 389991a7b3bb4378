package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB opens gorm on top of sqlmock with the postgres dialect
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// expiresAround matches a timestamp close to the expected expiry
type expiresAround struct {
	want time.Time
}

func (e expiresAround) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	d := ts.Sub(e.want)
	return d > -time.Minute && d < time.Minute
}

var (
	selectEntrySQL = regexp.QuoteMeta(`SELECT * FROM "storage_entries" WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`)
	upsertEntrySQL = regexp.QuoteMeta(`INSERT INTO "storage_entries" ("key","value","expires_at","updated_at") VALUES ($1,$2,$3,$4) ON CONFLICT ("key") DO UPDATE SET "value"="excluded"."value","expires_at"="excluded"."expires_at","updated_at"="excluded"."updated_at"`)
	deleteEntrySQL = regexp.QuoteMeta(`DELETE FROM "storage_entries" WHERE key = $1`)
	purgeSQL       = regexp.QuoteMeta(`DELETE FROM "storage_entries" WHERE expires_at IS NOT NULL AND expires_at <= $1`)
)

func TestStorage_Get(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 0)

	var _ storage.Storage = st

	rows := sqlmock.NewRows([]string{"key", "value", "expires_at", "updated_at"}).
		AddRow("session:abc:shopsphere_cart", []byte(`[{"id":1}]`), nil, time.Now())
	mock.ExpectQuery(selectEntrySQL).WillReturnRows(rows)

	value, err := st.Get(context.Background(), "session:abc:shopsphere_cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetMissingOrExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, time.Hour)

	// expired rows are filtered by the query and come back empty
	mock.ExpectQuery(selectEntrySQL).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "expires_at", "updated_at"}))

	_, err := st.Get(context.Background(), "session:abc:shopsphere_auth")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 0)

	mock.ExpectQuery(selectEntrySQL).WillReturnError(errors.New("connection reset"))

	_, err := st.Get(context.Background(), "session:abc:shopsphere_cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStorage_SetUpserts(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 0)

	mock.ExpectExec(upsertEntrySQL).
		WithArgs("session:abc:shopsphere_cart", []byte(`[]`), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Set(context.Background(), "session:abc:shopsphere_cart", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_SetWithTTL(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 2*time.Hour)

	mock.ExpectExec(upsertEntrySQL).
		WithArgs("session:abc:shopsphere_auth", []byte(`{}`), expiresAround{want: time.Now().UTC().Add(2 * time.Hour)}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Set(context.Background(), "session:abc:shopsphere_auth", []byte(`{}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_SetFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 0)

	mock.ExpectExec(upsertEntrySQL).WillReturnError(errors.New("disk full"))

	err := st.Set(context.Background(), "session:abc:shopsphere_cart", []byte(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write storage entry")
}

func TestStorage_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, 0)

	mock.ExpectExec(deleteEntrySQL).
		WithArgs("session:abc:shopsphere_last_order").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Delete(context.Background(), "session:abc:shopsphere_last_order"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_PurgeExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStorage(db, time.Hour)

	mock.ExpectExec(purgeSQL).
		WithArgs(expiresAround{want: time.Now().UTC()}).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := st.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
