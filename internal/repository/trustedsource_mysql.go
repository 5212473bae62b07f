package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kireshiki/Universalis/internal/model"
)

// MySQLTrustedSourceRepository implements TrustedSourceRepository using
// MySQL. The registry lives apart from the market data so that operator
// tooling can manage API keys independently.
type MySQLTrustedSourceRepository struct {
	db *sql.DB
}

// NewMySQLTrustedSourceRepository creates a new trusted-source repository.
func NewMySQLTrustedSourceRepository(db *sql.DB) *MySQLTrustedSourceRepository {
	return &MySQLTrustedSourceRepository{db: db}
}

// GetByKeyHash looks up a source by the SHA-512 hash of its API key.
// Returns nil when the hash is unknown.
func (r *MySQLTrustedSourceRepository) GetByKeyHash(ctx context.Context, keyHash string) (*model.TrustedSource, error) {
	query := `SELECT api_key_hash, name, upload_count FROM trusted_sources WHERE api_key_hash = ? LIMIT 1`

	var src model.TrustedSource
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(&src.APIKeyHash, &src.Name, &src.UploadCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trusted source: %w", err)
	}

	return &src, nil
}

// IncrementUploadCount adds one to the source's counter. The increment is
// performed by the database, so concurrent uploads never lose updates.
func (r *MySQLTrustedSourceRepository) IncrementUploadCount(ctx context.Context, keyHash string) error {
	query := `UPDATE trusted_sources SET upload_count = upload_count + 1 WHERE api_key_hash = ?`

	_, err := r.db.ExecContext(ctx, query, keyHash)
	if err != nil {
		return fmt.Errorf("failed to increment upload count: %w", err)
	}
	return nil
}

var _ TrustedSourceRepository = (*MySQLTrustedSourceRepository)(nil)
