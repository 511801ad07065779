package library

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rootID = strings.Repeat("a", 64)
var replyID = strings.Repeat("b", 64)
var alice = strings.Repeat("1", 64)
var bob = strings.Repeat("2", 64)

func TestGetRootRef(t *testing.T) {
	e := nostr.Event{Tags: nostr.Tags{
		nostr.Tag{"e", rootID, "", "root"},
		nostr.Tag{"e", replyID, "", "reply"},
	}}
	root, ok := GetRootRef(e)
	require.True(t, ok)
	assert.Equal(t, rootID, root)

	reply, ok := GetReplyRef(e)
	require.True(t, ok)
	assert.Equal(t, replyID, reply)
}

func TestGetRootRefAbsent(t *testing.T) {
	e := nostr.Event{Tags: nostr.Tags{nostr.Tag{"e", replyID}}}
	_, ok := GetRootRef(e)
	assert.False(t, ok)
	assert.True(t, ReferencesEvent(e))
}

func TestParticipants(t *testing.T) {
	e := nostr.Event{Tags: nostr.Tags{
		nostr.Tag{"p", alice},
		nostr.Tag{"e", rootID, "", "root"},
		nostr.Tag{"p", bob},
	}}
	assert.Equal(t, []Account{alice, bob}, Participants(e))
	assert.True(t, TaggedWith(e, alice))
	assert.False(t, TaggedWith(e, rootID))
}

func TestEventRefTag(t *testing.T) {
	assert.Equal(t, nostr.Tag{"e", rootID, "", "root"}, EventRef{ID: rootID, Marker: MarkerRoot}.Tag())
	assert.Equal(t, nostr.Tag{"e", rootID}, EventRef{ID: rootID}.Tag())
	assert.Equal(t, nostr.Tag{"p", alice}, AuthorRef{Account: alice}.Tag())
	assert.Equal(t, nostr.Tag{"t", "foodstr"}, TopicRef{Value: "foodstr"}.Tag())
}
