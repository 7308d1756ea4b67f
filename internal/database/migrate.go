package database

import (
	"context"
	"fmt"
)

var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
      CREATE TABLE IF NOT EXISTS users (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          first_name  TEXT NOT NULL,
          last_name   TEXT NOT NULL,
          email       TEXT NOT NULL,
          password    TEXT NOT NULL,
          phone       TEXT NOT NULL DEFAULT '',
          dob         DATE,
          gender      TEXT NOT NULL CHECK (gender IN ('m', 'f', 'o')),
          address     TEXT NOT NULL DEFAULT '',
          role_type   TEXT NOT NULL CHECK (role_type IN ('super_admin', 'artist_manager', 'artist')),
          is_approved BOOLEAN NOT NULL DEFAULT FALSE,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          CONSTRAINT users_email_key UNIQUE (email)
      )`},
	{"approval_requests", `
      CREATE TABLE IF NOT EXISTS approval_requests (
          id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          user_id         uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          requested_by_id uuid REFERENCES users(id) ON DELETE SET NULL,
          is_approved     BOOLEAN NOT NULL DEFAULT FALSE,
          created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
      )`},
	{"artist", `
      CREATE TABLE IF NOT EXISTS artist (
          id                 uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          user_id            uuid UNIQUE REFERENCES users(id) ON DELETE CASCADE,
          name               TEXT NOT NULL,
          bio                TEXT NOT NULL DEFAULT '',
          nationality        TEXT NOT NULL DEFAULT '',
          first_release_year INT NOT NULL DEFAULT 0,
          photo_url          TEXT NOT NULL DEFAULT '',
          created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
      )`},
	{"albums", `
      CREATE TABLE IF NOT EXISTS albums (
          id               uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          artist_id        uuid NOT NULL REFERENCES artist(id) ON DELETE CASCADE,
          name             TEXT NOT NULL,
          release_year     INT NOT NULL DEFAULT 0,
          genre            TEXT NOT NULL DEFAULT '',
          photo_url        TEXT NOT NULL DEFAULT '',
          tracklist        TEXT[] NOT NULL DEFAULT '{}',
          total_tracks     INT NOT NULL DEFAULT 0 CHECK (total_tracks >= 0),
          total_duration_s INT NOT NULL DEFAULT 0 CHECK (total_duration_s >= 0),
          created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
      )`},
	// The track number constraint is checked at commit so the shifting updates can pass through
	// transient duplicates.
	{"tracks", `
      CREATE TABLE IF NOT EXISTS tracks (
          id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          album_id     uuid NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
          title        TEXT NOT NULL,
          genre        TEXT NOT NULL CHECK (genre IN ('rnb', 'country', 'classic', 'rock', 'jazz', 'mix')),
          duration_s   INT NOT NULL DEFAULT 0 CHECK (duration_s >= 0),
          release_date DATE,
          cover_page   TEXT NOT NULL DEFAULT '',
          track_number INT NOT NULL CHECK (track_number >= 1),
          created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          CONSTRAINT tracks_album_number_key UNIQUE (album_id, track_number) DEFERRABLE INITIALLY DEFERRED
      )`},
	{"indexes", `
      CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums(artist_id);
      CREATE INDEX IF NOT EXISTS idx_approval_requests_user ON approval_requests(user_id)`},
}

// AutoMigrate creates the tables when they are missing. It is idempotent.
func AutoMigrate(ctx context.Context, db DB) error {
	for _, step := range schema {
		if _, err := db.Exec(ctx, step.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
	}
	return nil
}
