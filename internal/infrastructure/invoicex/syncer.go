package invoicex

import (
	"context"
	"fmt"

	"stockpulse/internal/domain/lots"
	"stockpulse/pkg/logger"
)

// Store is the InvoiceX side of a sync run.
type Store interface {
	PendingSales(ctx context.Context, limit int) ([]Row, error)
	MarkSynced(ctx context.Context, ids []int64) error
}

// Importer ingests sale records.
type Importer interface {
	ImportSales(ctx context.Context, records []lots.SaleRecord) lots.ImportSalesResult
}

// Syncer pulls pending InvoiceX sales into the inventory.
type Syncer struct {
	store     Store
	importer  Importer
	batchSize int
}

// NewSyncer creates a syncer reading at most batchSize sales per run.
func NewSyncer(store Store, importer Importer, batchSize int) *Syncer {
	return &Syncer{store: store, importer: importer, batchSize: batchSize}
}

// Run imports one batch. Sales that were inserted or already known are marked
// synced; sales that failed stay pending and are retried on the next run.
func (s *Syncer) Run(ctx context.Context) (lots.ImportSalesResult, error) {
	rows, err := s.store.PendingSales(ctx, s.batchSize)
	if err != nil {
		return lots.ImportSalesResult{}, err
	}
	if len(rows) == 0 {
		logger.Debug(ctx, "no pending invoicex sales")
		return lots.ImportSalesResult{}, nil
	}

	records := make([]lots.SaleRecord, len(rows))
	for i, r := range rows {
		records[i] = r.ToRecord()
	}

	res := s.importer.ImportSales(ctx, records)

	failed := make(map[int]struct{}, len(res.Errors))
	for _, e := range res.Errors {
		failed[e.Index] = struct{}{}
	}
	done := make([]int64, 0, len(rows)-len(failed))
	for i, r := range rows {
		if _, ok := failed[i]; !ok {
			done = append(done, r.ID)
		}
	}

	if err := s.store.MarkSynced(ctx, done); err != nil {
		return res, fmt.Errorf("invoicex batch %s: %w", res.BatchID, err)
	}

	for _, e := range res.Errors {
		logger.Warn(ctx, "invoicex sale not imported",
			"batch_id", res.BatchID,
			"invoicex_id", e.Key,
			"error", e.Message,
		)
	}
	return res, nil
}
