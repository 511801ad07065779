package monitors

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nostrich/messaging/composer"
)

func newPollUnderTest(t *testing.T, gateway *fakeGateway, flip bool) *PollMonitor {
	wallet := testWallet(t)
	m := NewPoll("topics", wallet, gateway, LoadDedup("topics"), false,
		[]string{"foodstr", "bitcoin"}, 2, time.Minute, time.Hour, time.Second)
	m.coin = func() bool { return flip }
	return m
}

func candidateBatch(t *testing.T, n int) []nostr.Event {
	batch := make([]nostr.Event, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, eventFrom(t, nostr.GeneratePrivateKey(), strings.Repeat(fmt.Sprint(i), 64), 1, nil))
	}
	return batch
}

func TestCycleReplyRetiresWholeBatch(t *testing.T) {
	testConfig(t)
	gateway := newFakeGateway()
	gateway.batch = candidateBatch(t, 3)
	m := newPollUnderTest(t, gateway, true)

	replied := 0
	reply := func(candidates []nostr.Event) (composer.Draft, error) {
		replied = len(candidates)
		return composer.Draft{Kind: 1, Content: "picked one"}, nil
	}
	synthesize := func([]string) (composer.Draft, error) {
		t.Fatal("coin said reply")
		return composer.Draft{}, nil
	}
	m.cycle(reply, synthesize)

	assert.Equal(t, 3, replied)
	assert.Equal(t, 1, gateway.publishedCount())
	// every candidate is retired, replied-to or not
	for _, candidate := range gateway.batch {
		assert.True(t, m.dedup.Contains(candidate.ID))
	}
}

func TestCycleSynthesizesWhenNoCandidates(t *testing.T) {
	testConfig(t)
	gateway := newFakeGateway()
	m := newPollUnderTest(t, gateway, true)

	var got []string
	synthesize := func(topics []string) (composer.Draft, error) {
		got = topics
		return composer.Draft{Kind: 1, Content: "fresh post"}, nil
	}
	reply := func([]nostr.Event) (composer.Draft, error) {
		t.Fatal("no candidates to reply to")
		return composer.Draft{}, nil
	}
	m.cycle(reply, synthesize)

	require.Equal(t, 1, gateway.publishedCount())
	assert.Len(t, got, 2)
}

func TestCycleSkipsOwnAndHandledEvents(t *testing.T) {
	testConfig(t)
	gateway := newFakeGateway()
	m := newPollUnderTest(t, gateway, true)

	handled := eventFrom(t, nostr.GeneratePrivateKey(), strings.Repeat("d", 64), 1, nil)
	m.dedup.Add(handled.ID)
	mine := nostr.Event{ID: strings.Repeat("e", 64), PubKey: m.wallet.Account, Kind: 1}
	fresh := eventFrom(t, nostr.GeneratePrivateKey(), strings.Repeat("f", 64), 1, nil)
	gateway.batch = []nostr.Event{handled, mine, fresh}

	reply := func(candidates []nostr.Event) (composer.Draft, error) {
		require.Len(t, candidates, 1)
		assert.Equal(t, fresh.ID, candidates[0].ID)
		return composer.Draft{Kind: 1, Content: "ok"}, nil
	}
	m.cycle(reply, func([]string) (composer.Draft, error) { return composer.Draft{}, nil })
	assert.Equal(t, 1, gateway.publishedCount())
	assert.False(t, m.dedup.Contains(mine.ID))
}

func TestCycleFailureRetiresNothing(t *testing.T) {
	testConfig(t)
	gateway := newFakeGateway()
	gateway.batch = candidateBatch(t, 2)
	m := newPollUnderTest(t, gateway, true)

	failing := func([]nostr.Event) (composer.Draft, error) {
		return composer.Draft{}, fmt.Errorf("inference down")
	}
	m.cycle(failing, func([]string) (composer.Draft, error) { return composer.Draft{}, nil })

	assert.Zero(t, gateway.publishedCount())
	for _, candidate := range gateway.batch {
		assert.False(t, m.dedup.Contains(candidate.ID))
	}
}

func TestPollStopIsIdempotent(t *testing.T) {
	testConfig(t)
	m := newPollUnderTest(t, newFakeGateway(), true)
	m.Stop()
	m.Stop()
}

func TestSampleTopics(t *testing.T) {
	topics := []string{"a", "b", "c"}
	picked := sampleTopics(topics, 2)
	require.Len(t, picked, 2)
	assert.NotEqual(t, picked[0], picked[1])
	assert.Len(t, sampleTopics(topics, 10), 3)
	assert.Empty(t, sampleTopics(nil, 2))
}
