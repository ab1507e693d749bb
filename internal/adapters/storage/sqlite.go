package storage

// sqlite.go — persistencia de runs de backtest.
//
// Estrategia:
//   - `runs`: una fila por run (UPSERT), con los resultados finales.
//     Se reescribe cada vez que el driver guarda, así un run interrumpido
//     deja igualmente su último estado conocido.
//   - `daily_values`: la serie de valoración diaria, PK (run_id, date).
//   - `trades`: cada fill ejecutado, para auditar la contabilidad a mano.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/fundbot/internal/domain"
	"github.com/alejandrodnm/fundbot/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                 TEXT PRIMARY KEY,
    tickers            TEXT     NOT NULL,
    start_date         TEXT     NOT NULL,
    end_date           TEXT     NOT NULL,
    initial_capital    REAL     NOT NULL,
    margin_requirement REAL     NOT NULL DEFAULT 0,
    final_value        REAL     NOT NULL DEFAULT 0,
    sharpe_ratio       REAL,
    sortino_ratio      REAL,
    max_drawdown       REAL,
    max_drawdown_date  TEXT,
    total_return_pct   REAL     NOT NULL DEFAULT 0,
    realized_gains     REAL     NOT NULL DEFAULT 0,
    win_rate_pct       REAL     NOT NULL DEFAULT 0,
    win_loss_ratio     REAL     NOT NULL DEFAULT 0,
    max_win_streak     INTEGER  NOT NULL DEFAULT 0,
    max_loss_streak    INTEGER  NOT NULL DEFAULT 0,
    created_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_values (
    run_id           TEXT NOT NULL,
    date             TEXT NOT NULL,
    total_value      REAL NOT NULL,
    long_exposure    REAL NOT NULL DEFAULT 0,
    short_exposure   REAL NOT NULL DEFAULT 0,
    gross_exposure   REAL NOT NULL DEFAULT 0,
    net_exposure     REAL NOT NULL DEFAULT 0,
    long_short_ratio REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, date)
);

CREATE TABLE IF NOT EXISTS trades (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    date   TEXT NOT NULL,
    ticker TEXT NOT NULL,
    action TEXT NOT NULL,
    filled INTEGER NOT NULL,
    price  REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_daily_run  ON daily_values(run_id, date);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, date);
`

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveRun hace upsert de la fila del run con sus resultados finales.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run ports.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, tickers, start_date, end_date, initial_capital, margin_requirement,
			 final_value, sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_date,
			 total_return_pct, realized_gains, win_rate_pct, win_loss_ratio,
			 max_win_streak, max_loss_streak, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			final_value       = excluded.final_value,
			sharpe_ratio      = excluded.sharpe_ratio,
			sortino_ratio     = excluded.sortino_ratio,
			max_drawdown      = excluded.max_drawdown,
			max_drawdown_date = excluded.max_drawdown_date,
			total_return_pct  = excluded.total_return_pct,
			realized_gains    = excluded.realized_gains,
			win_rate_pct      = excluded.win_rate_pct,
			win_loss_ratio    = excluded.win_loss_ratio,
			max_win_streak    = excluded.max_win_streak,
			max_loss_streak   = excluded.max_loss_streak
	`,
		run.ID,
		strings.Join(run.Tickers, ","),
		run.StartDate,
		run.EndDate,
		run.InitialCapital,
		run.MarginRequirement,
		run.FinalValue,
		nullFloat(run.Metrics.SharpeRatio),
		nullFloat(run.Metrics.SortinoRatio),
		nullFloat(run.Metrics.MaxDrawdown),
		nullDate(run.Metrics.MaxDrawdownDate),
		run.Stats.TotalReturnPct,
		run.Stats.TotalRealizedGains,
		run.Stats.WinRatePct,
		run.Stats.WinLossRatio,
		run.Stats.MaxWinStreak,
		run.Stats.MaxLossStreak,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: upsert %s: %w", run.ID, err)
	}
	return nil
}

// SaveDailyValues persiste la serie de valoración diaria del run.
func (s *SQLiteStorage) SaveDailyValues(ctx context.Context, runID string, values []domain.DailyValue) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveDailyValues: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO daily_values
			(run_id, date, total_value, long_exposure, short_exposure,
			 gross_exposure, net_exposure, long_short_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveDailyValues: prepare: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx,
			runID,
			v.Date.Format("2006-01-02"),
			v.TotalValue,
			v.LongExposure,
			v.ShortExposure,
			v.GrossExposure,
			v.NetExposure,
			v.LongShortRatio,
		); err != nil {
			return fmt.Errorf("storage.SaveDailyValues: insert %s: %w", v.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveDailyValues: commit: %w", err)
	}
	return nil
}

// SaveTrades persiste los fills ejecutados en un día del run.
func (s *SQLiteStorage) SaveTrades(ctx context.Context, runID, date string, trades []domain.ExecutedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (run_id, date, ticker, action, filled, price)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, runID, date, t.Ticker, string(t.Action), t.Filled, t.Price); err != nil {
			return fmt.Errorf("storage.SaveTrades: insert %s/%s: %w", date, t.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrades: commit: %w", err)
	}
	return nil
}

// GetRun carga la cabecera de un run por ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, runID string) (ports.RunRecord, error) {
	var (
		run          ports.RunRecord
		tickers      string
		sharpe       sql.NullFloat64
		sortino      sql.NullFloat64
		drawdown     sql.NullFloat64
		drawdownDate sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, tickers, start_date, end_date, initial_capital, margin_requirement,
		       final_value, sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_date,
		       total_return_pct, realized_gains, win_rate_pct, win_loss_ratio,
		       max_win_streak, max_loss_streak
		FROM runs WHERE id = ?
	`, runID).Scan(
		&run.ID, &tickers, &run.StartDate, &run.EndDate,
		&run.InitialCapital, &run.MarginRequirement, &run.FinalValue,
		&sharpe, &sortino, &drawdown, &drawdownDate,
		&run.Stats.TotalReturnPct, &run.Stats.TotalRealizedGains,
		&run.Stats.WinRatePct, &run.Stats.WinLossRatio,
		&run.Stats.MaxWinStreak, &run.Stats.MaxLossStreak,
	)
	if err != nil {
		return ports.RunRecord{}, fmt.Errorf("storage.GetRun: %s: %w", runID, err)
	}

	run.Tickers = strings.Split(tickers, ",")
	if sharpe.Valid {
		run.Metrics.SharpeRatio = &sharpe.Float64
	}
	if sortino.Valid {
		run.Metrics.SortinoRatio = &sortino.Float64
	}
	if drawdown.Valid {
		run.Metrics.MaxDrawdown = &drawdown.Float64
	}
	if drawdownDate.Valid {
		if d, err := time.Parse("2006-01-02", drawdownDate.String); err == nil {
			run.Metrics.MaxDrawdownDate = &d
		}
	}
	return run, nil
}

// GetDailyValues carga la serie diaria del run, ordenada por fecha.
func (s *SQLiteStorage) GetDailyValues(ctx context.Context, runID string) ([]domain.DailyValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, total_value, long_exposure, short_exposure,
		       gross_exposure, net_exposure, long_short_ratio
		FROM daily_values
		WHERE run_id = ?
		ORDER BY date ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetDailyValues: query: %w", err)
	}
	defer rows.Close()

	var values []domain.DailyValue
	for rows.Next() {
		var v domain.DailyValue
		var date string
		if err := rows.Scan(&date, &v.TotalValue, &v.LongExposure, &v.ShortExposure,
			&v.GrossExposure, &v.NetExposure, &v.LongShortRatio); err != nil {
			return nil, fmt.Errorf("storage.GetDailyValues: scan row: %w", err)
		}
		v.Date, _ = time.Parse("2006-01-02", date)
		values = append(values, v)
	}

	return values, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format("2006-01-02")
}
