package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres backs the store with a pgx connection pool. Used when DATABASE_URL
// is set; schema matches the SQLite backend with native timestamp columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coaches (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			channel_url   TEXT NOT NULL,
			channel_id    TEXT NOT NULL DEFAULT '',
			channel_name  TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			tone          TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'PENDING',
			metadata      TEXT NOT NULL DEFAULT '',
			training_data TEXT NOT NULL DEFAULT '',
			system_prompt TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id               TEXT NOT NULL,
			coach_id         TEXT NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			thumbnail        TEXT NOT NULL DEFAULT '',
			duration_seconds BIGINT,
			published_at     TIMESTAMPTZ,
			url              TEXT NOT NULL DEFAULT '',
			transcript_state TEXT NOT NULL DEFAULT '',
			transcript       TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (coach_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS training_jobs (
			id         TEXT PRIMARY KEY,
			coach_id   TEXT NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
			status     TEXT NOT NULL DEFAULT 'PENDING',
			progress   INTEGER NOT NULL DEFAULT 0,
			error      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_coach ON training_jobs(coach_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateCoach(ctx context.Context, c *Coach) error {
	if c.Status == "" {
		c.Status = StatusPending
	}
	now := time.Now().UTC()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO coaches (id, name, description, channel_url, channel_id, channel_name,
		 avatar, tone, status, metadata, training_data, system_prompt, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		c.ID, c.Name, c.Description, c.ChannelURL, c.ChannelID, c.ChannelName,
		c.Avatar, c.Tone, string(c.Status), c.Metadata, c.TrainingData, c.SystemPrompt, now)
	if err != nil {
		return fmt.Errorf("store: create coach: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

const pgCoachCols = `id, name, description, channel_url, channel_id, channel_name,
	avatar, tone, status, metadata, training_data, system_prompt, created_at, updated_at`

func scanPgCoach(row pgx.Row) (*Coach, error) {
	var c Coach
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ChannelURL, &c.ChannelID, &c.ChannelName,
		&c.Avatar, &c.Tone, &c.Status, &c.Metadata, &c.TrainingData, &c.SystemPrompt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Postgres) GetCoach(ctx context.Context, id string) (*Coach, error) {
	c, err := scanPgCoach(p.pool.QueryRow(ctx,
		`SELECT `+pgCoachCols+` FROM coaches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get coach: %w", err)
	}
	return c, nil
}

func (p *Postgres) ListCoaches(ctx context.Context) ([]Coach, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+pgCoachCols+` FROM coaches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list coaches: %w", err)
	}
	defer rows.Close()

	coaches := []Coach{}
	for rows.Next() {
		c, err := scanPgCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan coach: %w", err)
		}
		coaches = append(coaches, *c)
	}
	return coaches, rows.Err()
}

func (p *Postgres) DeleteCoach(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM coaches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete coach: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) UpdateCoachStatus(ctx context.Context, id string, status CoachStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE coaches SET status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("store: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveTrainingArtifacts(ctx context.Context, id, metadata, trainingData, systemPrompt string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE coaches SET metadata = $1, training_data = $2, system_prompt = $3, updated_at = now()
		 WHERE id = $4`, metadata, trainingData, systemPrompt, id)
	if err != nil {
		return fmt.Errorf("store: save artifacts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ReplaceVideos(ctx context.Context, coachID string, videos []Video) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM videos WHERE coach_id = $1`, coachID); err != nil {
		return fmt.Errorf("store: clear videos: %w", err)
	}
	for _, v := range videos {
		var published *time.Time
		if !v.PublishedAt.IsZero() {
			t := v.PublishedAt.UTC()
			published = &t
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO videos (id, coach_id, title, description, thumbnail,
			 duration_seconds, published_at, url, transcript_state, transcript)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			v.ID, coachID, v.Title, v.Description, v.Thumbnail,
			v.DurationSeconds, published, v.URL, string(v.TranscriptState), v.Transcript)
		if err != nil {
			return fmt.Errorf("store: insert video %s: %w", v.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) ListVideos(ctx context.Context, coachID string) ([]Video, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, coach_id, title, description, thumbnail, duration_seconds,
		 published_at, url, transcript_state, transcript
		 FROM videos WHERE coach_id = $1 ORDER BY published_at DESC NULLS LAST`, coachID)
	if err != nil {
		return nil, fmt.Errorf("store: list videos: %w", err)
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		var v Video
		var published *time.Time
		if err := rows.Scan(&v.ID, &v.CoachID, &v.Title, &v.Description, &v.Thumbnail,
			&v.DurationSeconds, &published, &v.URL, &v.TranscriptState, &v.Transcript); err != nil {
			return nil, fmt.Errorf("store: scan video: %w", err)
		}
		if published != nil {
			v.PublishedAt = *published
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (p *Postgres) CreateJob(ctx context.Context, j *TrainingJob) error {
	if j.Status == "" {
		j.Status = JobPending
	}
	now := time.Now().UTC()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO training_jobs (id, coach_id, status, progress, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		j.ID, j.CoachID, string(j.Status), j.Progress, j.Error, now)
	if err != nil {
		return fmt.Errorf("store: create job: %w", err)
	}
	j.CreatedAt, j.UpdatedAt = now, now
	return nil
}

func scanPgJob(row pgx.Row) (*TrainingJob, error) {
	var j TrainingJob
	if err := row.Scan(&j.ID, &j.CoachID, &j.Status, &j.Progress, &j.Error,
		&j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (p *Postgres) GetJob(ctx context.Context, id string) (*TrainingJob, error) {
	j, err := scanPgJob(p.pool.QueryRow(ctx,
		`SELECT id, coach_id, status, progress, error, created_at, updated_at
		 FROM training_jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get job: %w", err)
	}
	return j, nil
}

func (p *Postgres) LatestJob(ctx context.Context, coachID string) (*TrainingJob, error) {
	j, err := scanPgJob(p.pool.QueryRow(ctx,
		`SELECT id, coach_id, status, progress, error, created_at, updated_at
		 FROM training_jobs WHERE coach_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, coachID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest job: %w", err)
	}
	return j, nil
}

func (p *Postgres) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE training_jobs SET progress = $1, status = $2, updated_at = now() WHERE id = $3`,
		progress, string(JobRunning), id)
	if err != nil {
		return fmt.Errorf("store: job progress: %w", err)
	}
	return nil
}

func (p *Postgres) FinishJob(ctx context.Context, id string, status JobStatus, errMsg string) error {
	var err error
	if status == JobCompleted {
		_, err = p.pool.Exec(ctx,
			`UPDATE training_jobs SET status = $1, progress = 100, error = $2, updated_at = now() WHERE id = $3`,
			string(status), errMsg, id)
	} else {
		_, err = p.pool.Exec(ctx,
			`UPDATE training_jobs SET status = $1, error = $2, updated_at = now() WHERE id = $3`,
			string(status), errMsg, id)
	}
	if err != nil {
		return fmt.Errorf("store: finish job: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
