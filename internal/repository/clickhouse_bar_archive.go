package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ApexCore/internal/domain/models"
	pkgch "ApexCore/pkg/clickhouse"
	applogger "ApexCore/pkg/logger"
)

// CHBarArchive implements BarArchive backed by ClickHouse. It serves the
// replay path only; the live decision path never touches it.
type CHBarArchive struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarArchive(ch *pkgch.Client) *CHBarArchive {
	return &CHBarArchive{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (a *CHBarArchive) SetLogger(l *applogger.Logger) { a.l = l }

func (a *CHBarArchive) Bars(ctx context.Context, symbol string, series models.Series, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	table, err := tableForSeries(series)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT ts, open, high, low, close, vol
        FROM %s
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := a.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if a.l != nil {
			a.l.Error("clickhouse bars query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("series", string(series)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if a.l != nil {
				a.l.Error("clickhouse bars scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.String("series", string(series)),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		if a.l != nil {
			a.l.Error("clickhouse bars rows error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("series", string(series)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if a.l != nil {
		a.l.Info("clickhouse bars ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("series", string(series)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (a *CHBarArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *CHBarArchive) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

func tableForSeries(series models.Series) (string, error) {
	switch series {
	case models.SeriesPrimary:
		return "apexcore.bars_1m", nil
	case models.SeriesTrend:
		return "apexcore.bars_15m", nil
	case models.SeriesDaily:
		return "apexcore.bars_1d", nil
	default:
		return "", fmt.Errorf("unsupported series: %s", series)
	}
}
