// Package invoicex reads sales from the InvoiceX billing database (MySQL)
// and marks them as synchronized once they are imported.
package invoicex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"stockpulse/internal/domain/lots"
)

const (
	salesTable   = "sales"
	statusSynced = "synced"

	// DefaultChannel is used for sales exported without a channel.
	DefaultChannel = "unknown"
)

// Row is one sale as stored by InvoiceX.
type Row struct {
	ID           int64
	SerialNumber sql.NullString
	SaleDate     time.Time
	SaleChannel  sql.NullString
	SalePrice    decimal.Decimal
	Commission   decimal.NullDecimal
	CreatedAt    time.Time
}

// ToRecord converts the row into an import record keyed by the InvoiceX id.
func (r Row) ToRecord() lots.SaleRecord {
	channel := strings.TrimSpace(r.SaleChannel.String)
	if channel == "" {
		channel = DefaultChannel
	}
	commission := decimal.Zero
	if r.Commission.Valid {
		commission = r.Commission.Decimal
	}
	return lots.SaleRecord{
		ExternalRef: strconv.FormatInt(r.ID, 10),
		Serial:      strings.TrimSpace(r.SerialNumber.String),
		SaleDate:    r.SaleDate,
		Channel:     channel,
		GrossPrice:  r.SalePrice,
		Commission:  commission,
		Note:        "imported from InvoiceX",
	}
}

// Source queries the InvoiceX sales table.
type Source struct {
	db *sql.DB
}

// Open connects to InvoiceX. DATETIME columns are parsed as UTC times.
func Open(ctx context.Context, dsn string) (*Source, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse invoicex dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invoicex connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping invoicex: %w", err)
	}
	return &Source{db: db}, nil
}

// NewSource wraps an open database handle.
func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

// Close closes the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

func pendingQuery(limit int) squirrel.SelectBuilder {
	q := squirrel.Select("id", "serial_number", "sale_date", "sale_channel", "sale_price", "commission", "created_at").
		From(salesTable).
		Where(squirrel.Or{
			squirrel.NotEq{"sync_status": statusSynced},
			squirrel.Eq{"sync_status": nil},
		}).
		OrderBy("created_at", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// PendingSales returns up to limit sales not yet synchronized, oldest first.
func (s *Source) PendingSales(ctx context.Context, limit int) ([]Row, error) {
	query, args, err := pendingQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending sales query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending sales: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.SerialNumber, &r.SaleDate, &r.SaleChannel,
			&r.SalePrice, &r.Commission, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sale: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sales: %w", err)
	}
	return out, nil
}

func markSyncedQuery(ids []int64) squirrel.UpdateBuilder {
	return squirrel.Update(salesTable).
		Set("sync_status", statusSynced).
		Where(squirrel.Eq{"id": ids})
}

// MarkSynced flags the given sales as synchronized.
func (s *Source) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := markSyncedQuery(ids).ToSql()
	if err != nil {
		return fmt.Errorf("build mark synced query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) {
			return fmt.Errorf("mark %d sales synced: mysql error %d: %w", len(ids), myErr.Number, err)
		}
		return fmt.Errorf("mark %d sales synced: %w", len(ids), err)
	}
	return nil
}
