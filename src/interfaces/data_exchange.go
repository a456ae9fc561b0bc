package interfaces

// -----------------------------------------------------------------------------
// IPriceBroadcaster decouples the feed connector from whoever fans the
// updates out, so each side is testable with a fake counterpart.
// -----------------------------------------------------------------------------

type IPriceBroadcaster interface {

	// BroadcastPrice pushes one price change to all downstream listeners.
	// Must not block on slow consumers.
	BroadcastPrice(symbol string, price float64)
}
