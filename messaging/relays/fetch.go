package relays

import (
	"context"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrich/engine/library"
)

// FetchAll runs a short-lived query against every relay and returns whatever
// arrived before EOSE or the window expired. A relay that never answers only
// costs the window, never a hang.
func (p *Pool) FetchAll(filters nostr.Filters, window time.Duration) []nostr.Event {
	sane := library.ValidateSaneExecutionTime()
	defer sane()
	events := make(map[library.Sha256]nostr.Event)
	eventsMu := &deadlock.Mutex{}
	wait := &deadlock.WaitGroup{}
	for _, url := range p.urls {
		wait.Add(1)
		go func(url string) {
			defer wait.Done()
			// the window bounds the whole per-relay fetch, handshake included,
			// so a relay that accepts TCP but never speaks cannot hang us
			ctx, cancel := context.WithTimeout(context.Background(), window)
			defer cancel()
			relay, err := nostr.RelayConnect(ctx, url)
			if err != nil {
				return
			}
			sub, err := relay.Subscribe(ctx, filters)
			if err != nil {
				library.LogCLI(err.Error(), 1)
				relay.Close()
				return
			}
			for {
				select {
				case ev, ok := <-sub.Events:
					if !ok || ev == nil {
						relay.Close()
						return
					}
					eventsMu.Lock()
					events[ev.ID] = *ev
					eventsMu.Unlock()
				case <-sub.EndOfStoredEvents:
					sub.Unsub()
					relay.Close()
					return
				case <-ctx.Done():
					sub.Unsub()
					relay.Close()
					return
				}
			}
		}(url)
	}
	wait.Wait()
	list := make([]nostr.Event, 0, len(events))
	for _, event := range events {
		list = append(list, event)
	}
	return list
}

// FetchOne returns the newest event matching the filter, or false if nothing
// arrived within the window.
func (p *Pool) FetchOne(filter nostr.Filter, window time.Duration) (n nostr.Event, b bool) {
	var timestamp nostr.Timestamp
	for _, event := range p.FetchAll(nostr.Filters{filter}, window) {
		if event.CreatedAt > timestamp {
			b = true
			n = event
			timestamp = event.CreatedAt
		}
	}
	return
}
