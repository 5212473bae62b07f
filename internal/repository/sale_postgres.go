package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kireshiki/Universalis/internal/model"
)

// PostgresSaleRepository implements SaleRepository on PostgreSQL.
type PostgresSaleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSaleRepository creates the repository and ensures its schema.
func NewPostgresSaleRepository(ctx context.Context, pool *pgxpool.Pool) (*PostgresSaleRepository, error) {
	if err := createSaleTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create sale table: %w", err)
	}
	return &PostgresSaleRepository{pool: pool}, nil
}

func createSaleTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS sale (
		world_id INT NOT NULL,
		item_id INT NOT NULL,
		sold_at TIMESTAMPTZ NOT NULL,
		unit_price INT NOT NULL,
		quantity INT NOT NULL,
		buyer_name TEXT NOT NULL DEFAULT '',
		hq BOOLEAN NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sale_dedup
		ON sale(world_id, item_id, sold_at, unit_price, quantity, buyer_name);
	CREATE INDEX IF NOT EXISTS idx_sale_item_world_sold
		ON sale(item_id, world_id, sold_at DESC);
	`)
	return err
}

const saleColumns = `world_id, item_id, hq, unit_price, quantity, buyer_name, sold_at`

// Append inserts each sale once. Replays of rows already present are
// ignored via the dedup index.
func (r *PostgresSaleRepository) Append(ctx context.Context, worldID, itemID int32, sales []model.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range sales {
		batch.Queue(`
			INSERT INTO sale (`+saleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (world_id, item_id, sold_at, unit_price, quantity, buyer_name) DO NOTHING`,
			worldID, itemID, s.HQ, s.UnitPrice, s.Quantity, s.BuyerName, s.SoldAt)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to append sales for %d/%d: %w", worldID, itemID, err)
	}
	return nil
}

// Recent returns up to limit sales for the pair, newest first.
func (r *PostgresSaleRepository) Recent(ctx context.Context, worldID, itemID int32, limit int) ([]model.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sale
		WHERE world_id = $1 AND item_id = $2
		ORDER BY sold_at DESC
		LIMIT $3`,
		worldID, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for %d/%d: %w", worldID, itemID, err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// RecentMany fetches recent sales across several worlds in one round trip.
func (r *PostgresSaleRepository) RecentMany(ctx context.Context, worldIDs []int32, itemID int32, limit int) ([]model.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sale
		WHERE world_id = ANY($1) AND item_id = $2
		ORDER BY sold_at DESC
		LIMIT $3`,
		worldIDs, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for item %d: %w", itemID, err)
	}
	defer rows.Close()

	return scanSales(rows)
}

func scanSales(rows pgx.Rows) ([]model.Sale, error) {
	var out []model.Sale
	for rows.Next() {
		var s model.Sale
		err := rows.Scan(&s.WorldID, &s.ItemID, &s.HQ, &s.UnitPrice, &s.Quantity, &s.BuyerName, &s.SoldAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	return out, nil
}

var _ SaleRepository = (*PostgresSaleRepository)(nil)
