package feed

import (
	"context"

	"github.com/gorilla/websocket"

	"virtual-trader/src/interfaces"
)

// -----------------------------------------------------------------------------

// wsDialer opens real websocket connections to the feed.
type wsDialer struct{}

func NewWebsocketDialer() interfaces.IFeedDialer {
	return wsDialer{}
}

// -----------------------------------------------------------------------------

func (wsDialer) Dial(ctx context.Context, url string) (interfaces.IFeedConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
