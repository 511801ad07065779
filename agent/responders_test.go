package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nostrich/engine/library"
)

var self = strings.Repeat("f", 64)
var zapper = strings.Repeat("1", 64)

func mentionAgent() *Agent {
	conf := viper.New()
	conf.Set("agentName", "Nostrich")
	return &Agent{conf: conf, wallet: library.Wallet{Account: self}}
}

func TestParseChoice(t *testing.T) {
	idx, text := parseChoice("2: great point about mempools", 5)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "great point about mempools", text)

	// out of range picks the first candidate, keeps the whole answer
	idx, text = parseChoice("9: nope", 3)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "9: nope", text)

	// a model that ignores the format costs us nothing
	idx, text = parseChoice("just a plain reply", 3)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "just a plain reply", text)

	idx, text = parseChoice(" 1 : spaced out", 2)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "spaced out", text)
}

func TestZapSenderFromUppercasePTag(t *testing.T) {
	receipt := nostr.Event{Tags: nostr.Tags{
		nostr.Tag{"p", self},
		nostr.Tag{"P", zapper},
	}}
	sender, ok := zapSender(receipt)
	require.True(t, ok)
	assert.Equal(t, zapper, sender)
}

func TestZapSenderFromDescription(t *testing.T) {
	request := nostr.Event{PubKey: zapper, Kind: 9734}
	b, err := json.Marshal(request)
	require.NoError(t, err)
	receipt := nostr.Event{Tags: nostr.Tags{
		nostr.Tag{"p", self},
		nostr.Tag{"description", string(b)},
	}}
	sender, ok := zapSender(receipt)
	require.True(t, ok)
	assert.Equal(t, zapper, sender)
}

func TestZapSenderRejectsMalformedReceipts(t *testing.T) {
	for name, receipt := range map[string]nostr.Event{
		"no tags at all":  {},
		"lowercase only":  {Tags: nostr.Tags{nostr.Tag{"p", self}}},
		"garbage request": {Tags: nostr.Tags{nostr.Tag{"description", "not json"}}},
		"empty signer":    {Tags: nostr.Tags{nostr.Tag{"description", "{}"}}},
		"short P tag":     {Tags: nostr.Tags{nostr.Tag{"P", "abc"}}},
	} {
		_, ok := zapSender(receipt)
		assert.False(t, ok, name)
	}
}

func TestMentionEligible(t *testing.T) {
	a := mentionAgent()
	assert.True(t, a.mentionEligible(nostr.Event{Content: "hey nostrich, what do you think?"}))
	assert.True(t, a.mentionEligible(nostr.Event{Content: "NOSTRICH says what"}))
	assert.False(t, a.mentionEligible(nostr.Event{Content: "just birds here"}))
	// p-tagged posts belong to the replies monitor, not this one
	assert.False(t, a.mentionEligible(nostr.Event{
		Content: "hey nostrich",
		Tags:    nostr.Tags{nostr.Tag{"p", self}},
	}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 280))
	long := strings.Repeat("x", 300)
	got := truncate(long, 280)
	assert.Equal(t, long[:280]+"…", got)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
