package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"virtual-trader/src/helpers"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS holdings (
			ticker TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			buy_price DOUBLE PRECISION NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create holdings: %w", err)
	}

	d.Logger.Info("PostgresStore initialized successfully")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) FindAll() ([]models.MHolding, error) {
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

func (d *PostgresStore) FindByTicker(ticker string) (models.MHolding, error) {
	var h models.MHolding
	err := d.DB.QueryRow(
		`SELECT ticker, name, quantity, buy_price FROM holdings WHERE ticker = $1`, ticker,
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

func (d *PostgresStore) Create(h models.MHolding) error {
	_, err := d.DB.Exec(
		`INSERT INTO holdings (ticker, name, quantity, buy_price) VALUES ($1, $2, $3, $4)`,
		h.Ticker, h.Name, h.Quantity, h.BuyPrice,
	)
	if err != nil {
		return helpers.NewStoreError(fmt.Sprintf("failed to create holding %s", h.Ticker), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) UpdateQuantity(ticker string, quantity int) error {
	res, err := d.DB.Exec(`UPDATE holdings SET quantity = $1 WHERE ticker = $2`, quantity, ticker)
	if err != nil {
		return helpers.NewStoreError(fmt.Sprintf("failed to update holding %s", ticker), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return helpers.NewNotFoundError("no holding for ticker %s", ticker)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
