package transport

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultStreamSize is the capacity of the channel between the reader
// goroutine and the session loop.
const DefaultStreamSize = 64

// readChunk is the most bytes taken from the link per read.
const readChunk = 256

// Event is either a chunk of received bytes or the error that ended the
// stream.
type Event struct {
	Data []byte
	Err  error
}

// Stream reads link on a dedicated goroutine and delivers what it receives
// on the returned channel, in order. Read timeouts are skipped. The first
// other error is delivered as a final event and the channel is closed. When
// ctx is done the link is closed so a blocked read returns.
func Stream(ctx context.Context, link Link, size int) <-chan Event {
	if size <= 0 {
		size = DefaultStreamSize
	}
	ch := make(chan Event, size)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buf := make([]byte, readChunk)
		for {
			n, err := link.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case ch <- Event{Data: data}:
				case <-gctx.Done():
					return nil
				}
			}
			if gctx.Err() != nil {
				return nil
			}
			if err != nil && Classify(err) != KindTimeout {
				return err
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		return link.Close()
	})

	go func() {
		defer close(ch)
		err := g.Wait()
		if err == nil || ctx.Err() != nil {
			return
		}
		select {
		case ch <- Event{Err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}
