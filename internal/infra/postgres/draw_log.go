package postgres

import (
	"context"
	"fmt"
	"time"

	"timer-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DrawLog appends lucky-draw winners to Postgres. The insert-if-window-clear
// step runs in one transaction with the latest row locked, which gives the
// at-most-one-effective-draw guarantee under concurrent callers.
type DrawLog struct {
	pool   *pgxpool.Pool
	window time.Duration
}

func NewDrawLog(pool *pgxpool.Pool, replayWindow time.Duration) *DrawLog {
	return &DrawLog{pool: pool, window: replayWindow}
}

func (l *DrawLog) RecordWinner(ctx context.Context, entry domain.DrawRecord) (domain.DrawRecord, bool, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	var last domain.DrawRecord
	err = tx.QueryRow(ctx,
		`SELECT winner, league, drawn_at FROM draw_winners ORDER BY drawn_at DESC LIMIT 1 FOR UPDATE`,
	).Scan(&last.Winner, &last.League, &last.DrawnAt)
	if err == nil && l.window > 0 && entry.DrawnAt.Sub(last.DrawnAt) < l.window {
		return last, false, nil
	}
	if err != nil && err != pgx.ErrNoRows {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO draw_winners (winner, league, drawn_at) VALUES ($1, $2, $3)`,
		entry.Winner, entry.League, entry.DrawnAt,
	); err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return entry, true, nil
}

func (l *DrawLog) CurrentWinner(ctx context.Context) (domain.DrawRecord, bool, error) {
	var last domain.DrawRecord
	err := l.pool.QueryRow(ctx,
		`SELECT winner, league, drawn_at FROM draw_winners ORDER BY drawn_at DESC LIMIT 1`,
	).Scan(&last.Winner, &last.League, &last.DrawnAt)
	if err == pgx.ErrNoRows {
		return domain.DrawRecord{}, false, nil
	}
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if l.window > 0 && time.Since(last.DrawnAt) < l.window {
		return last, true, nil
	}
	return domain.DrawRecord{}, false, nil
}

func (l *DrawLog) RecentWinners(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	query := `SELECT winner, league, drawn_at FROM draw_winners ORDER BY drawn_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var winners []domain.DrawRecord
	for rows.Next() {
		var record domain.DrawRecord
		if err := rows.Scan(&record.Winner, &record.League, &record.DrawnAt); err != nil {
			return nil, fmt.Errorf("scan draw record: %w", err)
		}
		winners = append(winners, record)
	}
	return winners, rows.Err()
}
