package interfaces

import "virtual-trader/src/models"

// -----------------------------------------------------------------------------
// IPortfolioStore defines the contract for the portfolio persistence layer.
// Single-row read-after-write consistency is assumed.
// -----------------------------------------------------------------------------

type IPortfolioStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// FindAll returns every holding, zero-quantity rows included.
	FindAll() ([]models.MHolding, error)

	// -----------------------------------------------------------------------------

	// FindByTicker returns the holding for a ticker, or a NotFoundError.
	FindByTicker(ticker string) (models.MHolding, error)

	// -----------------------------------------------------------------------------

	// Create inserts a new holding row.
	Create(h models.MHolding) error

	// -----------------------------------------------------------------------------

	// UpdateQuantity sets the quantity for an existing ticker.
	UpdateQuantity(ticker string, quantity int) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
