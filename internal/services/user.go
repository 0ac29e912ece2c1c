package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, avatar_url, created_at, updated_at`

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]models.User, error) {
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a user, or refreshes the name of an existing user with the same email.
func (s *UserService) Create(ctx context.Context, email, name string) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING `+userColumns, email, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Provision returns the user registered under email, creating it when
// missing. created reports whether a new row was inserted.
func (s *UserService) Provision(ctx context.Context, email, name string) (user *models.User, created bool, err error) {
	user, err = s.GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}
	user, err = s.Create(ctx, email, name)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// getUsers loads the given users through q. A missing id yields ErrUserNotFound.
func getUsers(ctx context.Context, q database.Querier, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
	}
	return byID, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, avatar_url = COALESCE($2, avatar_url), updated_at = NOW()
		WHERE id = $3
		RETURNING `+userColumns, name, avatarURL, id))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// RemoveFriend deletes both directions of the friendship.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

func (s *UserService) GetGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.deleted, g.created_at, g.updated_at
		FROM user_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND g.deleted = FALSE
		ORDER BY g.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectGroups(rows)
}
