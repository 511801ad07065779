package composer

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nostrich/engine/actors"
)

var self = strings.Repeat("f", 64)
var author = strings.Repeat("1", 64)
var other = strings.Repeat("2", 64)
var rootID = strings.Repeat("a", 64)
var triggerID = strings.Repeat("b", 64)

func fixedTopics(topics ...string) func(int) []string {
	return func(n int) []string {
		if n > len(topics) {
			n = len(topics)
		}
		return topics[:n]
	}
}

func newComposer(topics ...string) *Composer {
	return &Composer{Self: self, Topics: fixedTopics(topics...), TopicCount: len(topics)}
}

func TestReplyWithRoot(t *testing.T) {
	c := newComposer()
	trigger := nostr.Event{
		ID:     triggerID,
		PubKey: author,
		Kind:   actors.KindNote,
		Tags:   nostr.Tags{nostr.Tag{"e", rootID, "", "root"}},
	}
	draft := c.Reply(trigger, "hello")
	require.Equal(t, nostr.Tags{
		nostr.Tag{"e", rootID, "", "root"},
		nostr.Tag{"e", triggerID, "", "reply"},
		nostr.Tag{"p", author},
	}, draft.Tags)
	assert.Equal(t, actors.KindNote, draft.Kind)
	assert.Equal(t, "hello", draft.Content)
}

func TestReplyNoRootFallback(t *testing.T) {
	c := newComposer()
	trigger := nostr.Event{ID: triggerID, PubKey: author, Kind: actors.KindNote}
	draft := c.Reply(trigger, "hi")
	// with no thread root the trigger itself becomes the root of a 1-hop thread
	require.Equal(t, nostr.Tags{
		nostr.Tag{"e", triggerID, "", "root"},
		nostr.Tag{"p", author},
	}, draft.Tags)
}

func TestReplySelfReferencedRootIgnored(t *testing.T) {
	c := newComposer()
	trigger := nostr.Event{
		ID:     triggerID,
		PubKey: author,
		Kind:   actors.KindNote,
		Tags:   nostr.Tags{nostr.Tag{"e", triggerID, "", "root"}},
	}
	draft := c.Reply(trigger, "hi")
	require.Equal(t, nostr.Tags{
		nostr.Tag{"e", triggerID, "", "root"},
		nostr.Tag{"p", author},
	}, draft.Tags)
}

func TestReplyPropagatesParticipants(t *testing.T) {
	c := newComposer()
	trigger := nostr.Event{
		ID:     triggerID,
		PubKey: author,
		Kind:   actors.KindComment,
		Tags: nostr.Tags{
			nostr.Tag{"e", rootID, "", "root"},
			nostr.Tag{"p", other},
			nostr.Tag{"p", self},   // never reference our own key
			nostr.Tag{"p", author}, // already added
			nostr.Tag{"p", other},  // no duplicates
		},
	}
	draft := c.Reply(trigger, "hi")
	require.Equal(t, nostr.Tags{
		nostr.Tag{"e", rootID, "", "root"},
		nostr.Tag{"e", triggerID, "", "reply"},
		nostr.Tag{"p", author},
		nostr.Tag{"p", other},
	}, draft.Tags)
	// a reply to a comment is itself a comment
	assert.Equal(t, actors.KindComment, draft.Kind)
}

func TestTopicTagsAndSuffix(t *testing.T) {
	c := newComposer("foodstr", "bitcoin")
	draft := c.Synthesize("dinner time")
	require.Equal(t, nostr.Tags{
		nostr.Tag{"t", "foodstr"},
		nostr.Tag{"t", "bitcoin"},
	}, draft.Tags)
	assert.Equal(t, "dinner time\n\n#foodstr #bitcoin", draft.Content)
	assert.Equal(t, actors.KindNote, draft.Kind)
}

func TestMentionIsTopLevelNote(t *testing.T) {
	c := newComposer()
	trigger := nostr.Event{ID: triggerID, PubKey: author, Kind: actors.KindComment}
	draft := c.Mention(trigger, "you rang")
	assert.Equal(t, actors.KindNote, draft.Kind)
	require.Equal(t, nostr.Tags{
		nostr.Tag{"e", triggerID, "", "root"},
		nostr.Tag{"p", author},
	}, draft.Tags)
}

func TestThanks(t *testing.T) {
	c := newComposer()
	draft := c.Thanks(author, "thanks for the sats")
	require.Equal(t, nostr.Tags{nostr.Tag{"p", author}}, draft.Tags)
	assert.Equal(t, actors.KindNote, draft.Kind)
}

func TestVocabularySamplesDistinct(t *testing.T) {
	generate := Vocabulary([]string{"a", "b", "c"})
	picked := generate(2)
	require.Len(t, picked, 2)
	assert.NotEqual(t, picked[0], picked[1])
	assert.Len(t, generate(10), 3)
}
