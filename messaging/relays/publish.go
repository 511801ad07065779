package relays

import (
	"context"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrich/engine/library"
)

// Publish sends the event to every relay in the pool and returns the number
// of relays that accepted it. Zero means the event reached nobody.
func (p *Pool) Publish(event nostr.Event) int {
	var wg = &deadlock.WaitGroup{}
	var mu = &deadlock.Mutex{}
	var acked int
	for _, url := range p.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			defer cancel()
			relay, err := nostr.RelayConnect(ctx, url)
			if err != nil {
				library.LogCLI(fmt.Sprintf("could not connect to relay %s: %s", url, err), 2)
				return
			}
			defer relay.Close()
			if err := relay.Publish(ctx, event); err != nil {
				library.LogCLI(fmt.Sprintf("could not publish to relay %s: %s", url, err), 2)
				return
			}
			mu.Lock()
			acked++
			mu.Unlock()
		}(url)
	}
	wg.Wait()
	return acked
}
