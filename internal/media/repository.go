package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollcast/backend/internal/models"
)

const attachmentColumns = `id, post_id, title, mime_type, file_path, file_url, file_size, COALESCE(s3_key,''), COALESCE(s3_url,''), COALESCE(metadata,'{}'), created_at`

// Repository handles attachment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attachments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an attachment and returns its id.
func (r *Repository) Create(ctx context.Context, a *models.Attachment) (int64, error) {
	const q = `INSERT INTO attachments (post_id, title, mime_type, file_path, file_url, file_size, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, a.PostID, a.Title, a.MimeType, a.FilePath, a.FileURL, a.FileSize, a.Metadata).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	return a.ID, nil
}

// Get returns an attachment by id, or nil when no row exists.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Attachment, error) {
	q := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`
	var a models.Attachment
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.PostID, &a.Title, &a.MimeType,
		&a.FilePath, &a.FileURL, &a.FileSize, &a.S3Key, &a.S3URL, &a.Metadata, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// UpdateS3Result records the mirrored object location.
func (r *Repository) UpdateS3Result(ctx context.Context, id int64, s3Key, s3URL string) error {
	_, err := r.pool.Exec(ctx, `UPDATE attachments SET s3_key = $1, s3_url = $2 WHERE id = $3`, s3Key, s3URL, id)
	return err
}

// ResolveURL returns the playable URL for an attachment: the S3 mirror when
// present, otherwise the local file URL. Empty when the attachment is gone.
func (r *Repository) ResolveURL(ctx context.Context, id int64) (string, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", nil
	}
	if a.S3URL != "" {
		return a.S3URL, nil
	}
	return a.FileURL, nil
}
