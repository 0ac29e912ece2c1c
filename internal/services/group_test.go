package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var groupCols = []string{"id", "name", "description", "deleted", "created_at", "updated_at"}

func setupGroupService(t *testing.T) (*GroupService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewGroupService(&database.DB{Pool: mock}), mock
}

func expectGroup(mock pgxmock.PgxPoolIface, groupID uuid.UUID) {
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM user_groups WHERE id = \$1 AND deleted = FALSE`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows(groupCols).AddRow(groupID, "Hikers", "", false, now, now))
}

func expectAdmin(mock pgxmock.PgxPoolIface, groupID, userID uuid.UUID, ok bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM group_admins`).
		WithArgs(groupID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(ok))
}

func TestGroupService_Create(t *testing.T) {
	svc, mock := setupGroupService(t)
	creator, groupID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO user_groups`).
		WithArgs("Hikers", "Weekend walks").
		WillReturnRows(pgxmock.NewRows(groupCols).AddRow(groupID, "Hikers", "Weekend walks", false, now, now))
	mock.ExpectExec(`INSERT INTO group_members`).
		WithArgs(groupID, creator).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO group_admins`).
		WithArgs(groupID, creator).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	group, err := svc.Create(context.Background(), creator, "Hikers", "Weekend walks")

	require.NoError(t, err)
	assert.Equal(t, groupID, group.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Create_TransactionRollback(t *testing.T) {
	svc, mock := setupGroupService(t)
	creator, groupID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO user_groups`).
		WithArgs("Hikers", "").
		WillReturnRows(pgxmock.NewRows(groupCols).AddRow(groupID, "Hikers", "", false, now, now))
	mock.ExpectExec(`INSERT INTO group_members`).
		WithArgs(groupID, creator).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), creator, "Hikers", "")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Delete_RequiresAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	actor, groupID := uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	expectAdmin(mock, groupID, actor, false)

	err := svc.Delete(context.Background(), actor, groupID)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Delete_IsSoft(t *testing.T) {
	svc, mock := setupGroupService(t)
	admin, groupID := uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	expectAdmin(mock, groupID, admin, true)
	mock.ExpectExec(`UPDATE user_groups SET deleted = TRUE`).
		WithArgs(groupID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, svc.Delete(context.Background(), admin, groupID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveMember_LastAdminCannotLeave(t *testing.T) {
	svc, mock := setupGroupService(t)
	admin, groupID := uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM group_admins WHERE group_id = \$1 FOR UPDATE`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(admin))
	mock.ExpectRollback()

	err := svc.RemoveMember(context.Background(), admin, groupID, admin)

	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveMember_ByAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	admin, member, groupID := uuid.New(), uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	expectAdmin(mock, groupID, admin, true)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM group_admins`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(admin))
	mock.ExpectExec(`DELETE FROM group_members`).
		WithArgs(groupID, member).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	assert.NoError(t, svc.RemoveMember(context.Background(), admin, groupID, member))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveMember_NotMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	user, groupID := uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM group_admins`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))
	mock.ExpectExec(`DELETE FROM group_members`).
		WithArgs(groupID, user).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := svc.RemoveMember(context.Background(), user, groupID, user)

	assert.ErrorIs(t, err, ErrNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_AddAdmin_MustBeMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	admin, outsider, groupID := uuid.New(), uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	expectAdmin(mock, groupID, admin, true)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM group_members`).
		WithArgs(groupID, outsider).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := svc.AddAdmin(context.Background(), admin, groupID, outsider)

	assert.ErrorIs(t, err, ErrNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	admin, other, groupID := uuid.New(), uuid.New(), uuid.New()

	expectGroup(mock, groupID)
	expectAdmin(mock, groupID, admin, true)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM group_admins`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(admin).AddRow(other))
	mock.ExpectExec(`DELETE FROM group_admins`).
		WithArgs(groupID, other).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	assert.NoError(t, svc.RemoveAdmin(context.Background(), admin, groupID, other))
	assert.NoError(t, mock.ExpectationsWereMet())
}
