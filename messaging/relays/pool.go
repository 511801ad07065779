package relays

import (
	"context"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"nostrich/engine/library"
)

// Pool is the shared outbound connection set. One Pool is constructed at
// startup and handed to every monitor; subscribing and publishing are
// independent so interleaved calls need no extra locking here.
type Pool struct {
	urls       []string
	staleAfter time.Duration
}

func NewPool(urls []string, staleAfter time.Duration) *Pool {
	if staleAfter == 0 {
		staleAfter = time.Minute * 2
	}
	return &Pool{urls: urls, staleAfter: staleAfter}
}

// Subscribe opens a long-lived subscription against every relay in the pool
// and merges the results into one Stream. Individual relay failures are
// retried forever; they never surface to the consumer.
func (p *Pool) Subscribe(filters nostr.Filters) (*Stream, error) {
	if len(p.urls) == 0 {
		return nil, fmt.Errorf("no relays configured")
	}
	stream := NewStream(64)
	for _, url := range p.urls {
		go p.consume(url, filters, stream)
	}
	return stream, nil
}

func (p *Pool) consume(url string, filters nostr.Filters, stream *Stream) {
	for {
		select {
		case <-stream.Done():
			return
		default:
		}
		ctx, cancel := context.WithCancel(context.Background())
		relay, err := nostr.RelayConnect(ctx, url)
		if err != nil {
			cancel()
			library.LogCLI(fmt.Sprintf("could not connect to relay %s: %s", url, err), 2)
			if !sleepUnlessDone(stream, time.Second*5) {
				return
			}
			continue
		}
		sub, err := relay.Subscribe(ctx, filters)
		if err != nil {
			library.LogCLI(err.Error(), 2)
			relay.Close()
			cancel()
			if !sleepUnlessDone(stream, time.Second*5) {
				return
			}
			continue
		}
		go func() {
			select {
			case <-sub.EndOfStoredEvents:
				stream.MarkCaughtUp()
			case <-ctx.Done():
			}
		}()
		lastEventTime := time.Now()
	L:
		for {
			select {
			case ev, ok := <-sub.Events:
				if !ok || ev == nil {
					library.LogCLI("Terminating connection to "+url, 3)
					break L
				}
				lastEventTime = time.Now()
				if ok, _ := ev.CheckSignature(); ok {
					stream.Send(*ev)
				}
			case <-time.After(time.Minute):
				if time.Since(lastEventTime) > p.staleAfter {
					library.LogCLI("Stale subscription on "+url+", restarting", 3)
					break L
				}
			case <-stream.Done():
				sub.Unsub()
				relay.Close()
				cancel()
				return
			}
		}
		sub.Unsub()
		relay.Close()
		cancel()
	}
}

func sleepUnlessDone(stream *Stream, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-stream.Done():
		return false
	}
}
