package recordings

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollcast/backend/internal/models"
)

const recordingColumns = `id, post_id, url, status, COALESCE(options,''), COALESCE(attachment_id,0), COALESCE(video_url,''), COALESCE(api_response,''), created_at, updated_at`

// Repository handles recording persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a recordings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateFields are the insertable recording fields. Zero values take the
// documented defaults (status=processing, post_id=0).
type CreateFields struct {
	PostID       int64
	URL          string
	Status       string
	Options      *models.RecordingOptions
	AttachmentID int64
	VideoURL     string
	APIResponse  string
}

// Create inserts one recording and returns its new id.
func (r *Repository) Create(ctx context.Context, f CreateFields) (int64, error) {
	status := f.Status
	if status == "" {
		status = models.RecordingStatusProcessing
	}
	opts, err := models.EncodeOptions(f.Options)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO recordings (post_id, url, status, options, attachment_id, video_url, api_response)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, ''), $7)
		RETURNING id`
	var id int64
	err = r.pool.QueryRow(ctx, q, f.PostID, f.URL, status, opts, f.AttachmentID, f.VideoURL, f.APIResponse).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert recording: %w", err)
	}
	return id, nil
}

// Get returns a recording by id with its options deserialized, or nil when
// no row exists.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetByPostID returns the most recently created recording for a post, or nil.
func (r *Repository) GetByPostID(ctx context.Context, postID int64) (*models.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE post_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, q, postID))
}

// UpdateFields are the patchable recording fields; nil pointers are left
// untouched.
type UpdateFields struct {
	Status       *string
	Options      *models.RecordingOptions
	AttachmentID *int64
	VideoURL     *string
	APIResponse  *string
}

// Update merges the supplied fields into the row and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id int64, f UpdateFields) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Status != nil {
		add("status", *f.Status)
	}
	if f.Options != nil {
		opts, err := models.EncodeOptions(f.Options)
		if err != nil {
			return err
		}
		add("options", opts)
	}
	if f.AttachmentID != nil {
		add("attachment_id", *f.AttachmentID)
	}
	if f.VideoURL != nil {
		add("video_url", *f.VideoURL)
	}
	if f.APIResponse != nil {
		add("api_response", *f.APIResponse)
	}
	q := fmt.Sprintf("UPDATE recordings SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update recording %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the recording row. Returns false when no row matched; a
// second delete of the same id is a no-op, not an error. The underlying
// media asset is kept.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recordings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete recording %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns recordings newest-first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

// CountByStatus returns the number of recordings with the given status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recordings WHERE status = $1`, status).Scan(&n)
	return n, err
}

// CountInMonth returns the number of recordings created in the given
// calendar month (format "2006-01").
func (r *Repository) CountInMonth(ctx context.Context, month string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recordings WHERE to_char(created_at, 'YYYY-MM') = $1`, month).Scan(&n)
	return n, err
}

// DeleteOlderThan removes recording rows older than the given number of
// days and returns how many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recordings WHERE created_at < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, fmt.Errorf("delete recordings older than %d days: %w", days, err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanOne(row pgx.Row) (*models.Recording, error) {
	rec, err := scanRecording(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanRecording(row rowScanner) (*models.Recording, error) {
	var rec models.Recording
	var rawOptions string
	err := row.Scan(&rec.ID, &rec.PostID, &rec.URL, &rec.Status, &rawOptions,
		&rec.AttachmentID, &rec.VideoURL, &rec.APIResponse, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// Undecodable options degrade to nil; consumers fall back to no-frame
	// rendering rather than failing the read.
	if opts, _, decErr := models.DecodeOptions(rawOptions); decErr == nil {
		rec.Options = opts
	}
	return &rec, nil
}
