package store

import (
	"context"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/db"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
)

const jobColumns = `id,user_id,place_id,window_start_at,window_end_at,party_size,status,last_checked_at,created_at,updated_at`

// Jobs is the postgres repository for monitor jobs.
type Jobs struct{ db *db.DB }

func NewJobs(d *db.DB) *Jobs { return &Jobs{db: d} }

func (r *Jobs) CreateJob(ctx context.Context, j monitor.Job) error {
	err := r.db.Exec(ctx, `
INSERT INTO monitor_jobs(id,user_id,place_id,window_start_at,window_end_at,party_size,status)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		j.ID, j.UserID, j.PlaceID, j.TimeWindowStart, j.TimeWindowEnd, j.PartySize, string(j.Status),
	)
	return db.WrapNotFound(err)
}

func (r *Jobs) GetJob(ctx context.Context, id string) (monitor.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM monitor_jobs WHERE id=$1`, id)
	return scanJob(row)
}

func (r *Jobs) FindActiveJob(ctx context.Context, userID, placeID string) (monitor.Job, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+jobColumns+` FROM monitor_jobs
WHERE user_id=$1 AND place_id=$2 AND status=$3`, userID, placeID, string(monitor.StatusActive))
	return scanJob(row)
}

func (r *Jobs) ListJobsByUser(ctx context.Context, userID string) ([]monitor.Job, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+jobColumns+` FROM monitor_jobs
WHERE user_id=$1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

func (r *Jobs) ListJobsByStatus(ctx context.Context, status monitor.Status) ([]monitor.Job, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+jobColumns+` FROM monitor_jobs
WHERE status=$1
ORDER BY created_at ASC`, string(status))
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// TransitionJob is the conditional status update: it only writes when the row
// still holds the expected status, and reports whether this call won.
func (r *Jobs) TransitionJob(ctx context.Context, id string, from, to monitor.Status) (bool, error) {
	n, err := r.db.ExecRows(ctx, `
UPDATE monitor_jobs SET status=$3, updated_at=now()
WHERE id=$1 AND status=$2`, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Jobs) TouchJob(ctx context.Context, id string, checkedAt time.Time) error {
	return r.db.Exec(ctx, `
UPDATE monitor_jobs SET last_checked_at=$2, updated_at=now()
WHERE id=$1`, id, checkedAt)
}

func scanJob(row db.Row) (monitor.Job, error) {
	var j monitor.Job
	var status string
	if err := row.Scan(
		&j.ID, &j.UserID, &j.PlaceID, &j.TimeWindowStart, &j.TimeWindowEnd,
		&j.PartySize, &status, &j.LastCheckedAt, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return monitor.Job{}, db.WrapNotFound(err)
	}
	j.Status = monitor.Status(status)
	return j, nil
}

func scanJobs(rows db.Rows) ([]monitor.Job, error) {
	defer rows.Close()
	var out []monitor.Job
	for rows.Next() {
		var j monitor.Job
		var status string
		if err := rows.Scan(
			&j.ID, &j.UserID, &j.PlaceID, &j.TimeWindowStart, &j.TimeWindowEnd,
			&j.PartySize, &status, &j.LastCheckedAt, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		j.Status = monitor.Status(status)
		out = append(out, j)
	}
	return out, rows.Err()
}
