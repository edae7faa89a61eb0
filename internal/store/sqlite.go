package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the default single-node backend.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".coachtube", "coachtube.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coaches (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			description   TEXT,
			channel_url   TEXT NOT NULL,
			channel_id    TEXT,
			channel_name  TEXT,
			avatar        TEXT,
			tone          TEXT,
			status        TEXT NOT NULL DEFAULT 'PENDING',
			metadata      TEXT,
			training_data TEXT,
			system_prompt TEXT,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id               TEXT NOT NULL,
			coach_id         TEXT NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
			title            TEXT NOT NULL,
			description      TEXT,
			thumbnail        TEXT,
			duration_seconds INTEGER,
			published_at     TEXT,
			url              TEXT,
			transcript_state TEXT NOT NULL DEFAULT '',
			transcript       TEXT,
			PRIMARY KEY (coach_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS training_jobs (
			id         TEXT PRIMARY KEY,
			coach_id   TEXT NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
			status     TEXT NOT NULL DEFAULT 'PENDING',
			progress   INTEGER NOT NULL DEFAULT 0,
			error      TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_coach ON training_jobs(coach_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *SQLite) CreateCoach(ctx context.Context, c *Coach) error {
	now := nowRFC3339()
	if c.Status == "" {
		c.Status = StatusPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coaches (id, name, description, channel_url, channel_id, channel_name,
		 avatar, tone, status, metadata, training_data, system_prompt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.ChannelURL, c.ChannelID, c.ChannelName,
		c.Avatar, c.Tone, string(c.Status), c.Metadata, c.TrainingData, c.SystemPrompt, now, now)
	if err != nil {
		return fmt.Errorf("store: create coach: %w", err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, now)
	c.UpdatedAt = c.CreatedAt
	return nil
}

const coachCols = `id, name, description, channel_url, channel_id, channel_name,
	avatar, tone, status, metadata, training_data, system_prompt, created_at, updated_at`

func scanCoach(row interface{ Scan(...any) error }) (*Coach, error) {
	var c Coach
	var desc, chID, chName, avatar, tone, meta, td, sp sql.NullString
	var created, updated string
	err := row.Scan(&c.ID, &c.Name, &desc, &c.ChannelURL, &chID, &chName,
		&avatar, &tone, &c.Status, &meta, &td, &sp, &created, &updated)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.ChannelID = chID.String
	c.ChannelName = chName.String
	c.Avatar = avatar.String
	c.Tone = tone.String
	c.Metadata = meta.String
	c.TrainingData = td.String
	c.SystemPrompt = sp.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, created)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &c, nil
}

func (s *SQLite) GetCoach(ctx context.Context, id string) (*Coach, error) {
	c, err := scanCoach(s.db.QueryRowContext(ctx,
		`SELECT `+coachCols+` FROM coaches WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get coach: %w", err)
	}
	return c, nil
}

func (s *SQLite) ListCoaches(ctx context.Context) ([]Coach, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+coachCols+` FROM coaches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list coaches: %w", err)
	}
	defer rows.Close()

	coaches := []Coach{}
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan coach: %w", err)
		}
		coaches = append(coaches, *c)
	}
	return coaches, rows.Err()
}

func (s *SQLite) DeleteCoach(ctx context.Context, id string) error {
	// No ON DELETE CASCADE enforcement without foreign_keys pragma; delete
	// children explicitly.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE coach_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete videos: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM training_jobs WHERE coach_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete jobs: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM coaches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete coach: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) UpdateCoachStatus(ctx context.Context, id string, status CoachStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coaches SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("store: update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) SaveTrainingArtifacts(ctx context.Context, id, metadata, trainingData, systemPrompt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coaches SET metadata = ?, training_data = ?, system_prompt = ?, updated_at = ? WHERE id = ?`,
		metadata, trainingData, systemPrompt, nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("store: save artifacts: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) ReplaceVideos(ctx context.Context, coachID string, videos []Video) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE coach_id = ?`, coachID); err != nil {
		return fmt.Errorf("store: clear videos: %w", err)
	}
	for _, v := range videos {
		var published string
		if !v.PublishedAt.IsZero() {
			published = v.PublishedAt.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO videos (id, coach_id, title, description, thumbnail,
			 duration_seconds, published_at, url, transcript_state, transcript)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, coachID, v.Title, v.Description, v.Thumbnail,
			v.DurationSeconds, published, v.URL, string(v.TranscriptState), v.Transcript)
		if err != nil {
			return fmt.Errorf("store: insert video %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) ListVideos(ctx context.Context, coachID string) ([]Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, coach_id, title, description, thumbnail, duration_seconds,
		 published_at, url, transcript_state, transcript
		 FROM videos WHERE coach_id = ? ORDER BY published_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("store: list videos: %w", err)
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		var v Video
		var desc, thumb, published, url, transcript sql.NullString
		var dur sql.NullInt64
		if err := rows.Scan(&v.ID, &v.CoachID, &v.Title, &desc, &thumb,
			&dur, &published, &url, &v.TranscriptState, &transcript); err != nil {
			return nil, fmt.Errorf("store: scan video: %w", err)
		}
		v.Description = desc.String
		v.Thumbnail = thumb.String
		v.URL = url.String
		v.Transcript = transcript.String
		if dur.Valid {
			d := dur.Int64
			v.DurationSeconds = &d
		}
		if published.String != "" {
			v.PublishedAt, _ = time.Parse(time.RFC3339, published.String)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *SQLite) CreateJob(ctx context.Context, j *TrainingJob) error {
	now := nowRFC3339()
	if j.Status == "" {
		j.Status = JobPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_jobs (id, coach_id, status, progress, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CoachID, string(j.Status), j.Progress, j.Error, now, now)
	if err != nil {
		return fmt.Errorf("store: create job: %w", err)
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339, now)
	j.UpdatedAt = j.CreatedAt
	return nil
}

func scanJob(row interface{ Scan(...any) error }) (*TrainingJob, error) {
	var j TrainingJob
	var errMsg sql.NullString
	var created, updated string
	if err := row.Scan(&j.ID, &j.CoachID, &j.Status, &j.Progress, &errMsg, &created, &updated); err != nil {
		return nil, err
	}
	j.Error = errMsg.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, created)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &j, nil
}

func (s *SQLite) GetJob(ctx context.Context, id string) (*TrainingJob, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT id, coach_id, status, progress, error, created_at, updated_at
		 FROM training_jobs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get job: %w", err)
	}
	return j, nil
}

func (s *SQLite) LatestJob(ctx context.Context, coachID string) (*TrainingJob, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT id, coach_id, status, progress, error, created_at, updated_at
		 FROM training_jobs WHERE coach_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, coachID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest job: %w", err)
	}
	return j, nil
}

func (s *SQLite) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE training_jobs SET progress = ?, status = ?, updated_at = ? WHERE id = ?`,
		progress, string(JobRunning), nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("store: job progress: %w", err)
	}
	return nil
}

func (s *SQLite) FinishJob(ctx context.Context, id string, status JobStatus, errMsg string) error {
	progress := 100
	if status != JobCompleted {
		// Leave progress where it was on failure.
		_, err := s.db.ExecContext(ctx,
			`UPDATE training_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
			string(status), errMsg, nowRFC3339(), id)
		if err != nil {
			return fmt.Errorf("store: finish job: %w", err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE training_jobs SET status = ?, progress = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), progress, errMsg, nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("store: finish job: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
