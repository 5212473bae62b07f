package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kireshiki/Universalis/internal/model"
)

// PostgresListingRepository implements ListingRepository on PostgreSQL.
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresListingRepository creates the repository and ensures its schema.
func NewPostgresListingRepository(ctx context.Context, pool *pgxpool.Pool) (*PostgresListingRepository, error) {
	if err := createListingTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create listing table: %w", err)
	}
	return &PostgresListingRepository{pool: pool}, nil
}

func createListingTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS listing (
		listing_id TEXT PRIMARY KEY,
		item_id INT NOT NULL,
		world_id INT NOT NULL,
		hq BOOLEAN NOT NULL,
		on_mannequin BOOLEAN NOT NULL,
		materia JSONB NOT NULL DEFAULT '[]',
		unit_price INT NOT NULL,
		quantity INT NOT NULL,
		dye_id INT NOT NULL DEFAULT 0,
		creator_id TEXT NOT NULL DEFAULT '',
		creator_name TEXT NOT NULL DEFAULT '',
		last_review_time TIMESTAMPTZ NOT NULL,
		retainer_id TEXT NOT NULL DEFAULT '',
		retainer_name TEXT NOT NULL DEFAULT '',
		retainer_city_id INT NOT NULL DEFAULT 0,
		seller_id TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL,
		source TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_listing_item_world ON listing(item_id, world_id);
	`)
	return err
}

const listingColumns = `listing_id, item_id, world_id, hq, on_mannequin, materia,
	unit_price, quantity, dye_id, creator_id, creator_name, last_review_time,
	retainer_id, retainer_name, retainer_city_id, seller_id, uploaded_at, source`

const insertListingSQL = `
	INSERT INTO listing (` + listingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (listing_id) DO NOTHING`

// ReplaceGroup deletes the pair's live set and inserts the replacement in
// one transactional batch. A listing_id present in both sets keeps its
// original row and uploaded_at stamp: the delete spares incoming ids and
// the insert backs off on conflict.
func (r *PostgresListingRepository) ReplaceGroup(ctx context.Context, key model.WorldItemKey, listings []model.Listing, uploadedAt time.Time) error {
	incoming := make([]string, len(listings))
	for i := range listings {
		incoming[i] = listings[i].ListingID
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM listing WHERE world_id = $1 AND item_id = $2 AND listing_id != ALL($3)`,
		key.WorldID, key.ItemID, incoming)

	for i := range listings {
		l := &listings[i]
		materia, err := json.Marshal(materiaOrEmpty(l.Materia))
		if err != nil {
			return fmt.Errorf("failed to encode materia for %s: %w", l.ListingID, err)
		}
		batch.Queue(insertListingSQL,
			l.ListingID, l.ItemID, l.WorldID, l.HQ, l.OnMannequin, materia,
			l.UnitPrice, l.Quantity, l.DyeID, l.CreatorID, l.CreatorName, l.LastReviewTime,
			l.RetainerID, l.RetainerName, l.RetainerCityID, l.SellerID, uploadedAt, l.Source,
		)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to replace listings for %d/%d: %w", key.WorldID, key.ItemID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit listing replace: %w", err)
	}
	return nil
}

// DeleteGroup removes every listing for the pair.
func (r *PostgresListingRepository) DeleteGroup(ctx context.Context, key model.WorldItemKey) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM listing WHERE world_id = $1 AND item_id = $2`, key.WorldID, key.ItemID)
	if err != nil {
		return fmt.Errorf("failed to delete listings for %d/%d: %w", key.WorldID, key.ItemID, err)
	}
	return nil
}

// Retrieve returns the pair's live listings, cheapest first.
func (r *PostgresListingRepository) Retrieve(ctx context.Context, key model.WorldItemKey) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listing
		WHERE world_id = $1 AND item_id = $2
		ORDER BY unit_price ASC, listing_id ASC`,
		key.WorldID, key.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for %d/%d: %w", key.WorldID, key.ItemID, err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// RetrieveMany fetches several (world, item) pairs in one round trip using
// array parameters.
func (r *PostgresListingRepository) RetrieveMany(ctx context.Context, worldIDs, itemIDs []int32) (map[model.WorldItemKey][]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listing
		WHERE item_id = ANY($1) AND world_id = ANY($2)`,
		itemIDs, worldIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[model.WorldItemKey][]model.Listing)
	for _, l := range listings {
		out[l.Key()] = append(out[l.Key()], l)
	}
	return out, nil
}

func scanListings(rows pgx.Rows) ([]model.Listing, error) {
	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		var materia []byte
		err := rows.Scan(
			&l.ListingID, &l.ItemID, &l.WorldID, &l.HQ, &l.OnMannequin, &materia,
			&l.UnitPrice, &l.Quantity, &l.DyeID, &l.CreatorID, &l.CreatorName, &l.LastReviewTime,
			&l.RetainerID, &l.RetainerName, &l.RetainerCityID, &l.SellerID, &l.UploadedAt, &l.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		if err := json.Unmarshal(materia, &l.Materia); err != nil {
			return nil, fmt.Errorf("failed to decode materia for %s: %w", l.ListingID, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}
	return out, nil
}

func materiaOrEmpty(m []model.Materia) []model.Materia {
	if m == nil {
		return []model.Materia{}
	}
	return m
}

var _ ListingRepository = (*PostgresListingRepository)(nil)
