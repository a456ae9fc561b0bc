package interfaces

import "context"

// -----------------------------------------------------------------------------
// IFeedConn is one live connection to the market data feed. The method set
// matches *websocket.Conn so the real dialer needs no adapter.
// -----------------------------------------------------------------------------

type IFeedConn interface {

	// ReadMessage blocks until the next frame or a transport error.
	ReadMessage() (messageType int, p []byte, err error)

	// -----------------------------------------------------------------------------

	// WriteJSON sends a subscribe/unsubscribe command.
	WriteJSON(v interface{}) error

	// -----------------------------------------------------------------------------

	// Close tears the connection down.
	Close() error
}

// -----------------------------------------------------------------------------
// IFeedDialer opens feed connections. Injected so reconnect logic can be
// tested without a network.
// -----------------------------------------------------------------------------

type IFeedDialer interface {
	Dial(ctx context.Context, url string) (IFeedConn, error)
}

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error.
	Get(url string, params map[string]string) ([]byte, error)
}
