package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// bridgeDialTimeout bounds the websocket handshake.
const bridgeDialTimeout = 10 * time.Second

type bridgeLink struct {
	net.Conn
	name string
}

func (l *bridgeLink) Name() string {
	return l.name
}

// dialBridge connects to a websocket serial bridge. Each binary message
// carries raw bytes in either direction.
func dialBridge(ctx context.Context, url string) (Link, error) {
	dialCtx, cancel := context.WithTimeout(ctx, bridgeDialTimeout)
	defer cancel()

	c, resp, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"User-Agent": []string{"uartterm"}},
	})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: HTTP %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	// The link outlives the dial context; the stream closes it on shutdown.
	conn := websocket.NetConn(context.Background(), c, websocket.MessageBinary)
	return &bridgeLink{Conn: conn, name: url}, nil
}
