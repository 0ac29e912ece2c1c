package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func TestUserService_Create(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ana@example.com", "Ana").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana", (*string)(nil), now, now))

	user, err := svc.Create(ctx, "ana@example.com", "Ana")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Nil(t, user.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()
	avatar := "https://example.com/a.png"

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana", &avatar, now, now))

	user, err := svc.GetByID(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, avatar, *user.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), userID)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Update(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`UPDATE users SET name`).
		WithArgs("Ana B", (*string)(nil), userID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana B", (*string)(nil), now, now))

	user, err := svc.Update(context.Background(), userID, "Ana B", nil)

	require.NoError(t, err)
	assert.Equal(t, "Ana B", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetFriends(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM friendships f JOIN users u`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(uuid.New(), "bo@example.com", "Bo", (*string)(nil), now, now).
			AddRow(uuid.New(), "cy@example.com", "Cy", (*string)(nil), now, now))

	friends, err := svc.GetFriends(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, friends, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RemoveFriend(t *testing.T) {
	userID, friendID := uuid.New(), uuid.New()

	t.Run("removes both directions", func(t *testing.T) {
		svc, mock := setupUserService(t)
		mock.ExpectExec(`DELETE FROM friendships`).
			WithArgs(userID, friendID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		assert.NoError(t, svc.RemoveFriend(context.Background(), userID, friendID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not friends", func(t *testing.T) {
		svc, mock := setupUserService(t)
		mock.ExpectExec(`DELETE FROM friendships`).
			WithArgs(userID, friendID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := svc.RemoveFriend(context.Background(), userID, friendID)

		assert.ErrorIs(t, err, ErrFriendshipNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserService_Provision(t *testing.T) {
	now := time.Now()

	t.Run("existing user is returned unchanged", func(t *testing.T) {
		svc, mock := setupUserService(t)
		userID := uuid.New()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("ana@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana", (*string)(nil), now, now))

		user, created, err := svc.Provision(context.Background(), "ana@example.com", "Someone Else")

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "Ana", user.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user is created", func(t *testing.T) {
		svc, mock := setupUserService(t)
		userID := uuid.New()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("new@example.com").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("new@example.com", "New").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "new@example.com", "New", (*string)(nil), now, now))

		user, created, err := svc.Provision(context.Background(), "new@example.com", "New")

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, userID, user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
