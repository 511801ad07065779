package monitors

import (
	"time"

	"github.com/nbd-wtf/go-nostr"
	"nostrich/engine/actors"
	"nostrich/engine/library"
	"nostrich/messaging/composer"
	"nostrich/messaging/relays"
)

// Gateway is the slice of the relay pool the monitors need. The pool is
// constructed once at startup and injected, so tests can run against a fake.
type Gateway interface {
	Subscribe(filters nostr.Filters) (*relays.Stream, error)
	Publish(event nostr.Event) int
	FetchOne(filter nostr.Filter, window time.Duration) (nostr.Event, bool)
	FetchAll(filters nostr.Filters, window time.Duration) []nostr.Event
}

// Monitor owns one long-lived subscription and produces at most one response
// per eligible event. Events are handled strictly in arrival order; a
// response is published and recorded before the next event is looked at.
type Monitor struct {
	name    string
	wallet  library.Wallet
	gateway Gateway
	dedup   *Dedup
	dryRun  bool
	stream  *relays.Stream
}

func New(name string, wallet library.Wallet, gateway Gateway, dedup *Dedup, dryRun bool) *Monitor {
	return &Monitor{
		name:    name,
		wallet:  wallet,
		gateway: gateway,
		dedup:   dedup,
		dryRun:  dryRun,
	}
}

// Start opens the subscription and begins evaluating events. For every event
// that is not our own, not already handled, and passes eligible, respond is
// invoked and the result published; the id is recorded only after at least
// one relay accepted the response.
func (m *Monitor) Start(filters nostr.Filters, eligible func(nostr.Event) bool, respond func(nostr.Event) (composer.Draft, error)) error {
	stream, err := m.gateway.Subscribe(filters)
	if err != nil {
		return err
	}
	m.stream = stream
	actors.GetWaitGroup().Add(1)
	go m.run(stream, eligible, respond)
	return nil
}

func (m *Monitor) run(stream *relays.Stream, eligible func(nostr.Event) bool, respond func(nostr.Event) (composer.Draft, error)) {
	defer actors.GetWaitGroup().Done()
	eose := stream.EOSE
	for {
		select {
		case <-eose:
			eose = nil
			library.LogCLI(m.name+" monitor caught up, now live", 4)
		case event := <-stream.Events:
			m.handle(event, eligible, respond)
		case <-stream.Done():
			return
		case <-actors.GetTerminateChan():
			stream.Close()
			return
		}
	}
}

func (m *Monitor) handle(event nostr.Event, eligible func(nostr.Event) bool, respond func(nostr.Event) (composer.Draft, error)) {
	// our own events can never trigger a response, or we would answer
	// ourselves forever
	if event.PubKey == m.wallet.Account {
		return
	}
	if m.dedup.Contains(event.ID) {
		return
	}
	if !eligible(event) {
		return
	}
	draft, err := respond(event)
	if err != nil {
		// not recorded, so the event stays eligible on a future scan
		library.LogCLI(m.name+" could not respond to "+event.ID+": "+err.Error(), 2)
		return
	}
	if !publish(m.wallet, m.gateway, m.dryRun, draft) {
		return
	}
	m.dedup.Add(event.ID)
}

// Stop closes the subscription. In-flight handling finishes; nothing new is
// delivered afterwards.
func (m *Monitor) Stop() {
	if m.stream != nil {
		m.stream.Close()
	}
}

func (m *Monitor) Name() string {
	return m.name
}

func (m *Monitor) Handled() int {
	return m.dedup.Size()
}

func publish(wallet library.Wallet, gateway Gateway, dryRun bool, draft composer.Draft) bool {
	event := nostr.Event{
		PubKey:    wallet.Account,
		CreatedAt: nostr.Now(),
		Kind:      draft.Kind,
		Tags:      draft.Tags,
		Content:   draft.Content,
	}
	if err := event.Sign(wallet.PrivateKey); err != nil {
		library.LogCLI(err.Error(), 1)
		return false
	}
	if dryRun {
		library.LogCLI("doNotPublish is set, dropping event "+event.ID, 4)
		return true
	}
	if gateway.Publish(event) == 0 {
		library.LogCLI("event "+event.ID+" was not accepted by any relay", 2)
		return false
	}
	return true
}
