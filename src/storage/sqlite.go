package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"virtual-trader/src/helpers"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables keeps existing rows: the portfolio must survive restarts.
func (d *SQLiteStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS holdings (
			ticker TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			buy_price REAL NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create holdings: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) FindAll() ([]models.MHolding, error) {
	rows, err := d.DB.Query(`SELECT ticker, name, quantity, buy_price FROM holdings ORDER BY ticker`)
	if err != nil {
		return nil, helpers.NewStoreError("failed to list holdings", err)
	}
	defer rows.Close()

	var holdings []models.MHolding
	for rows.Next() {
		var h models.MHolding
		if err := rows.Scan(&h.Ticker, &h.Name, &h.Quantity, &h.BuyPrice); err != nil {
			return nil, helpers.NewStoreError("failed to scan holding", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewStoreError("failed to iterate holdings", err)
	}
	return holdings, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) FindByTicker(ticker string) (models.MHolding, error) {
	var h models.MHolding
	err := d.DB.QueryRow(
		`SELECT ticker, name, quantity, buy_price FROM holdings WHERE ticker = ?`, ticker,
	).Scan(&h.Ticker, &h.Name, &h.Quantity, &h.BuyPrice)

	if errors.Is(err, sql.ErrNoRows) {
		return models.MHolding{}, helpers.NewNotFoundError("no holding for ticker %s", ticker)
	}
	if err != nil {
		return models.MHolding{}, helpers.NewStoreError("failed to read holding", err)
	}
	return h, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Create(h models.MHolding) error {
	_, err := d.DB.Exec(
		`INSERT INTO holdings (ticker, name, quantity, buy_price) VALUES (?, ?, ?, ?)`,
		h.Ticker, h.Name, h.Quantity, h.BuyPrice,
	)
	if err != nil {
		return helpers.NewStoreError(fmt.Sprintf("failed to create holding %s", h.Ticker), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) UpdateQuantity(ticker string, quantity int) error {
	res, err := d.DB.Exec(`UPDATE holdings SET quantity = ? WHERE ticker = ?`, quantity, ticker)
	if err != nil {
		return helpers.NewStoreError(fmt.Sprintf("failed to update holding %s", ticker), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return helpers.NewNotFoundError("no holding for ticker %s", ticker)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
