package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Friendships are stored as two symmetric rows.
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, friend_id),
		CHECK (user_id <> friend_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_groups (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id UUID NOT NULL REFERENCES user_groups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS group_admins (
		group_id UUID NOT NULL REFERENCES user_groups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		address VARCHAR(500) NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS saved_locations (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		location_id UUID NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, location_id)
	)`,

	`CREATE TABLE IF NOT EXISTS recurring_event_schedules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		frequency VARCHAR(20) NOT NULL CHECK (frequency IN ('daily', 'weekly', 'monthly', 'yearly')),
		interval INTEGER NOT NULL CHECK (interval > 0),
		end_datetime TIMESTAMP WITH TIME ZONE,
		repeats INTEGER CHECK (repeats > 0),
		base_event_id UUID NOT NULL UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK ((end_datetime IS NULL) <> (repeats IS NULL))
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_type VARCHAR(20) NOT NULL CHECK (event_type IN ('private', 'group')),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location_id UUID REFERENCES locations(id) ON DELETE SET NULL,
		group_id UUID REFERENCES user_groups(id) ON DELETE CASCADE,
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		end_time TIMESTAMP WITH TIME ZONE NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'planned'
			CHECK (status IN ('planned', 'in progress', 'ended', 'cancelled')),
		recurrence_schedule_id UUID REFERENCES recurring_event_schedules(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (end_time > start_time)
	)`,

	`CREATE TABLE IF NOT EXISTS event_organisers (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (event_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS event_participants (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (event_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS friend_invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		sender_id UUID REFERENCES users(id) ON DELETE SET NULL,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		response_received BOOLEAN NOT NULL DEFAULT FALSE,
		date_sent TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS group_invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		sender_id UUID REFERENCES users(id) ON DELETE SET NULL,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		group_id UUID NOT NULL REFERENCES user_groups(id) ON DELETE CASCADE,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		response_received BOOLEAN NOT NULL DEFAULT FALSE,
		date_sent TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		email_response_token CHAR(32) NOT NULL,
		CONSTRAINT group_invitations_token_key UNIQUE (email_response_token)
	)`,

	`CREATE TABLE IF NOT EXISTS event_invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		sender_id UUID REFERENCES users(id) ON DELETE SET NULL,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		response_received BOOLEAN NOT NULL DEFAULT FALSE,
		date_sent TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		email_response_token CHAR(32) NOT NULL,
		CONSTRAINT event_invitations_token_key UNIQUE (email_response_token)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		sender_id UUID REFERENCES users(id) ON DELETE SET NULL,
		receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		read_status BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS event_status_checks (
		id BIGSERIAL PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		fire_at TIMESTAMP WITH TIME ZONE NOT NULL,
		fired_at TIMESTAMP WITH TIME ZONE,
		UNIQUE (event_id, fire_at)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_friendships_friend_id ON friendships(friend_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_schedule_id ON events(recurrence_schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_group_id ON events(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_event_participants_user_id ON event_participants(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_invitations_recipient ON friend_invitations(recipient_id, response_received)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_invitations_sender ON friend_invitations(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_invitations_recipient ON group_invitations(recipient_id, response_received)`,
	`CREATE INDEX IF NOT EXISTS idx_group_invitations_sender ON group_invitations(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_event_invitations_recipient ON event_invitations(recipient_id, response_received)`,
	`CREATE INDEX IF NOT EXISTS idx_event_invitations_sender ON event_invitations(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_id ON messages(receiver_id, created_at DESC)`,

	// Partial index used by the status sweep.
	`CREATE INDEX IF NOT EXISTS idx_event_status_checks_due ON event_status_checks(fire_at) WHERE fired_at IS NULL`,

	`DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_name = 'recurring_event_schedules' AND constraint_name = 'recurring_event_schedules_base_event_fk'
		) THEN
			ALTER TABLE recurring_event_schedules
				ADD CONSTRAINT recurring_event_schedules_base_event_fk
				FOREIGN KEY (base_event_id) REFERENCES events(id) ON DELETE CASCADE;
		END IF;
	END $$`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
