package service

import (
	"context"
	"log"

	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/repository"
)

// DefaultHistoryEntries is the sale count served when a query does not
// name its own limit.
const DefaultHistoryEntries = 50

// MaxHistoryEntries caps a single history response.
const MaxHistoryEntries = 999

// SaleService is the append-only sale history store. Histories grow
// monotonically and reads are rare next to listing reads, so there is no
// cache in front of it.
type SaleService struct {
	repo repository.SaleRepository
}

// NewSaleService creates the sale store.
func NewSaleService(repo repository.SaleRepository) *SaleService {
	return &SaleService{repo: repo}
}

// Append records the sales once each; replayed rows are ignored.
func (s *SaleService) Append(ctx context.Context, worldID, itemID int32, sales []model.Sale) error {
	if err := s.repo.Append(ctx, worldID, itemID, sales); err != nil {
		log.Printf("[SaleService] append failed for %d/%d: %v", worldID, itemID, err)
		return err
	}
	return nil
}

// Recent returns up to limit sales for the pair, newest first.
func (s *SaleService) Recent(ctx context.Context, worldID, itemID int32, limit int) ([]model.Sale, error) {
	return s.repo.Recent(ctx, worldID, itemID, clampHistoryLimit(limit))
}

// RecentMany returns up to limit sales across several worlds, newest first.
func (s *SaleService) RecentMany(ctx context.Context, worldIDs []int32, itemID int32, limit int) ([]model.Sale, error) {
	return s.repo.RecentMany(ctx, worldIDs, itemID, clampHistoryLimit(limit))
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryEntries
	}
	if limit > MaxHistoryEntries {
		return MaxHistoryEntries
	}
	return limit
}
