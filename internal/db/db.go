package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens the database and applies the schema migrations.
func Connect(dsn string, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations applied", zap.Int("count", len(migrations)))

	return db, nil
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            gender TEXT,
            age INT CHECK (age BETWEEN 18 AND 100),
            partner_gender TEXT,
            must_condition TEXT,
            mbti TEXT,
            budget_pref BIGINT[] NOT NULL DEFAULT '{}',
            purpose_tags TEXT[] NOT NULL DEFAULT '{}',
            demand_tags TEXT[] NOT NULL DEFAULT '{}',
            phone TEXT,
            email TEXT,
            avatar_url TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS places (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            owner UUID NOT NULL,
            title TEXT NOT NULL,
            images TEXT[] NOT NULL DEFAULT '{}',
            genre TEXT NOT NULL,
            purpose_tags TEXT[] NOT NULL DEFAULT '{}',
            demand_tags TEXT[] NOT NULL DEFAULT '{}',
            budget_option INT,
            purpose_text TEXT,
            budget_min INT,
            budget_max INT,
            date_start DATE,
            date_end DATE,
            recruit_num INT NOT NULL CHECK (recruit_num BETWEEN 1 AND 100),
            first_choice TEXT,
            second_choice TEXT,
            gmap_url TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS idx_places_owner ON places(owner);`,
	`CREATE INDEX IF NOT EXISTS idx_places_created_at ON places(created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS reactions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            place_id UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
            from_uid UUID NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('like', 'keep', 'pass')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(place_id, from_uid)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_from_uid ON reactions(from_uid, type);`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            place_id UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
            user_a UUID NOT NULL,
            user_b UUID NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (user_a < user_b),
            UNIQUE(place_id, user_a, user_b)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_chat_rooms_user_a ON chat_rooms(user_a);`,
	`CREATE INDEX IF NOT EXISTS idx_chat_rooms_user_b ON chat_rooms(user_b);`,
	`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            room_id UUID NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
            sender UUID NOT NULL,
            body TEXT NOT NULL,
            sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            is_read BOOLEAN NOT NULL DEFAULT FALSE
        );`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room_sent ON messages(room_id, sent_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(room_id) WHERE is_read = FALSE;`,
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
