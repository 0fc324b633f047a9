package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	zlog, _ := zap.NewDevelopment()
	return NewGormStore(gdb, zlog), mock
}

// TestGetMemberNotFound tests that a missing row maps to the
// not-found sentinel rather than the availability one.
func TestGetMemberNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetMember(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGetMemberFound tests row scanning into the member model.
func TestGetMemberFound(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "tier"}).
			AddRow(id, "Sarah", "Chen", "sarah@example.com", "member"))

	member, err := store.GetMember(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, member.ID)
	assert.Equal(t, "Sarah Chen", member.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListMembersUnavailable tests that query failures wrap the
// availability sentinel.
func TestListMembersUnavailable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "members"`).
		WillReturnError(fmt.Errorf("connection refused"))

	_, err := store.ListMembers(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListMemberActivity tests row scanning including the opaque
// jsonb event payload.
func TestListMemberActivity(t *testing.T) {
	store, mock := newMockStore(t)

	memberID := uuid.New()
	occurred := time.Now().UTC().AddDate(0, 0, -2)
	mock.ExpectQuery(`SELECT \* FROM "activity_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "activity_type", "occurred_at", "metadata"}).
			AddRow(uuid.New(), memberID, "sermon_view", occurred, []byte(`{"campus":"north"}`)))

	records, err := store.ListMemberActivity(context.Background(), memberID, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sermon_view", records[0].ActivityType)
	assert.JSONEq(t, `{"campus":"north"}`, string(records[0].Metadata))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListMemberActivityUnavailable tests error wrapping on the
// per-member activity read.
func TestListMemberActivityUnavailable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "activity_records"`).
		WillReturnError(fmt.Errorf("relation does not exist"))

	_, err := store.ListMemberActivity(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListSearchLogsBetween tests windowed row scanning.
func TestListSearchLogsBetween(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "search_log_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "query", "results_count", "occurred_at"}).
			AddRow(uuid.New(), "grief support", 1, now.AddDate(0, 0, -3)))

	logs, err := store.ListSearchLogsBetween(context.Background(), now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "grief support", logs[0].Query)
	assert.Equal(t, 1, logs[0].ResultsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
