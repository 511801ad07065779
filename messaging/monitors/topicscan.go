package monitors

import (
	"math/rand"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"nostrich/engine/actors"
	"nostrich/engine/library"
	"nostrich/messaging/composer"
)

// PollMonitor is the topic-scan monitor. Instead of a live subscription it
// periodically queries a bounded look-back window across a few randomly
// sampled topics, hands the whole batch to a selection step, and publishes a
// single event per cycle: either a reply to the best candidate or, on a coin
// flip, a freshly synthesized post.
type PollMonitor struct {
	name     string
	wallet   library.Wallet
	gateway  Gateway
	dedup    *Dedup
	dryRun   bool
	topics   []string
	sample   int
	interval time.Duration
	lookback time.Duration
	window   time.Duration
	limit    int
	coin     func() bool
	stop     chan struct{}
}

func NewPoll(name string, wallet library.Wallet, gateway Gateway, dedup *Dedup, dryRun bool, topics []string, sample int, interval, lookback, window time.Duration) *PollMonitor {
	return &PollMonitor{
		name:     name,
		wallet:   wallet,
		gateway:  gateway,
		dedup:    dedup,
		dryRun:   dryRun,
		topics:   topics,
		sample:   sample,
		interval: interval,
		lookback: lookback,
		window:   window,
		limit:    50,
		coin:     func() bool { return rand.Intn(2) == 0 },
		stop:     make(chan struct{}),
	}
}

// Start begins the scan loop. reply gets the candidate batch and should
// return a draft answering one of them; synthesize gets the sampled topics
// and should return a fresh post.
func (m *PollMonitor) Start(reply func([]nostr.Event) (composer.Draft, error), synthesize func([]string) (composer.Draft, error)) {
	actors.GetWaitGroup().Add(1)
	go m.run(reply, synthesize)
}

func (m *PollMonitor) run(reply func([]nostr.Event) (composer.Draft, error), synthesize func([]string) (composer.Draft, error)) {
	defer actors.GetWaitGroup().Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.cycle(reply, synthesize)
		case <-m.stop:
			return
		case <-actors.GetTerminateChan():
			return
		}
	}
}

func (m *PollMonitor) cycle(reply func([]nostr.Event) (composer.Draft, error), synthesize func([]string) (composer.Draft, error)) {
	topics := sampleTopics(m.topics, m.sample)
	if len(topics) == 0 {
		return
	}
	since := nostr.Timestamp(time.Now().Add(-m.lookback).Unix())
	filter := nostr.Filter{
		Kinds: []int{actors.KindNote},
		Tags:  nostr.TagMap{"t": topics},
		Since: &since,
		Limit: m.limit,
	}
	var candidates []nostr.Event
	for _, event := range m.gateway.FetchAll(nostr.Filters{filter}, m.window) {
		if event.PubKey == m.wallet.Account {
			continue
		}
		if m.dedup.Contains(event.ID) {
			continue
		}
		candidates = append(candidates, event)
	}
	var draft composer.Draft
	var err error
	if m.coin() && len(candidates) > 0 {
		draft, err = reply(candidates)
	} else {
		draft, err = synthesize(topics)
	}
	if err != nil {
		// candidates stay unrecorded, the next cycle gets another shot
		library.LogCLI(m.name+" cycle skipped: "+err.Error(), 2)
		return
	}
	if !publish(m.wallet, m.gateway, m.dryRun, draft) {
		return
	}
	// retire every candidate examined this cycle, replied-to or not, so the
	// next scan does not keep chewing the same backlog
	ids := make([]library.Sha256, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
	}
	if len(ids) > 0 {
		m.dedup.Add(ids...)
	}
}

func (m *PollMonitor) Stop() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
}

func (m *PollMonitor) Name() string {
	return m.name
}

func (m *PollMonitor) Handled() int {
	return m.dedup.Size()
}

func sampleTopics(topics []string, n int) []string {
	if n > len(topics) {
		n = len(topics)
	}
	picked := make([]string, 0, n)
	for _, i := range rand.Perm(len(topics))[:n] {
		picked = append(picked, topics[i])
	}
	return picked
}
