// Package transport opens the byte link to the device and classifies its
// failures. A link is either a local serial port or a websocket bridge that
// forwards a remote port.
package transport

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Link is an open byte stream to the device.
type Link interface {
	io.ReadWriteCloser
	Name() string
}

// Open opens the link described by cfg.
func Open(ctx context.Context, cfg Config) (Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = PollInterval
	}
	if IsBridgeURL(cfg.Port) {
		return dialBridge(ctx, cfg.Port)
	}
	return openSerial(cfg)
}

// Reconnect waits for the device to come back and reopens it, retrying
// every interval until it succeeds or ctx is done.
func Reconnect(ctx context.Context, cfg Config, interval time.Duration) (Link, error) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if !IsBridgeURL(cfg.Port) {
			if err := WaitForDevice(ctx, cfg.Port); err != nil {
				return nil, err
			}
		}
		link, err := Open(ctx, cfg)
		if err == nil {
			return link, nil
		}
		if Classify(err) == KindFatal && !retryableOnReconnect(err) {
			return nil, fmt.Errorf("reopen %s: %w", cfg.Port, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
