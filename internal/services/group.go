package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const groupColumns = `id, name, description, deleted, created_at, updated_at`

type GroupService struct {
	db *database.DB
}

func NewGroupService(db *database.DB) *GroupService {
	return &GroupService{db: db}
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var g models.Group
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Deleted, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGroups(rows pgx.Rows) ([]models.Group, error) {
	defer rows.Close()
	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// Create makes the creator both member and admin of the new group.
func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, name, description string) (*models.Group, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := scanGroup(tx.QueryRow(ctx, `
		INSERT INTO user_groups (name, description)
		VALUES ($1, $2)
		RETURNING `+groupColumns, name, description))
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, group.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to add creator as member: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO group_admins (group_id, user_id) VALUES ($1, $2)`, group.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to add creator as admin: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return group, nil
}

func (s *GroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group, err := scanGroup(s.db.Pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM user_groups WHERE id = $1 AND deleted = FALSE
	`, groupID))
	if err != nil {
		return nil, notFound(err, ErrGroupNotFound)
	}
	return group, nil
}

// GetForMember returns the group only if userID belongs to it.
func (s *GroupService) GetForMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := isGroupMember(ctx, s.db.Pool, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return group, nil
}

func (s *GroupService) Update(ctx context.Context, actorID, groupID uuid.UUID, name, description *string) (*models.Group, error) {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	group, err := scanGroup(s.db.Pool.QueryRow(ctx, `
		UPDATE user_groups
		SET name = COALESCE($1, name), description = COALESCE($2, description), updated_at = NOW()
		WHERE id = $3 AND deleted = FALSE
		RETURNING `+groupColumns, name, description, groupID))
	if err != nil {
		return nil, notFound(err, ErrGroupNotFound)
	}
	return group, nil
}

// Delete soft deletes the group.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID uuid.UUID) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE user_groups SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE
	`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return isGroupMember(ctx, s.db.Pool, groupID, userID)
}

func (s *GroupService) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_admins WHERE group_id = $1 AND user_id = $2)
	`, groupID, userID).Scan(&exists)
	return exists, err
}

func isGroupMember(ctx context.Context, q database.Querier, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, userID).Scan(&exists)
	return exists, err
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID uuid.UUID) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}
	ok, err := s.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *GroupService) GetMembers(ctx context.Context, actorID, groupID uuid.UUID) ([]models.GroupMember, error) {
	if _, err := s.GetForMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.group_id, m.user_id, (a.user_id IS NOT NULL), m.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN group_admins a ON a.group_id = m.group_id AND a.user_id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.created_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		var user models.User
		if err := rows.Scan(
			&member.GroupID, &member.UserID, &member.IsAdmin, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// RemoveMember removes userID from the group. Admins may remove anyone and
// members may remove themselves. The last admin cannot leave.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}
	if actorID != userID {
		ok, err := s.IsAdmin(ctx, groupID, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrForbidden
		}
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := dropAdmin(ctx, tx, groupID, userID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *GroupService) AddAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	member, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotMember
	}
	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO group_admins (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, groupID, userID)
	return err
}

func (s *GroupService) RemoveAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := dropAdmin(ctx, tx, groupID, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// dropAdmin removes the admin role from userID if held, refusing to drop the last admin.
// The admin rows are locked so concurrent removals cannot both pass the check.
func dropAdmin(ctx context.Context, tx pgx.Tx, groupID, userID uuid.UUID) error {
	rows, err := tx.Query(ctx, `SELECT user_id FROM group_admins WHERE group_id = $1 FOR UPDATE`, groupID)
	if err != nil {
		return err
	}
	admins, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return err
	}

	isAdmin := false
	for _, id := range admins {
		if id == userID {
			isAdmin = true
			break
		}
	}
	if !isAdmin {
		return nil
	}
	if len(admins) == 1 {
		return ErrLastAdmin
	}

	_, err = tx.Exec(ctx, `DELETE FROM group_admins WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	return err
}
