package composer

import (
	"math/rand"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"golang.org/x/exp/slices"
	"nostrich/engine/actors"
	"nostrich/engine/library"
)

// Draft is an outbound event before signing. Signing and id assignment
// happen at publish time.
type Draft struct {
	Kind    int
	Content string
	Tags    nostr.Tags
}

// Composer turns generated text plus a triggering event into a
// protocol-valid reply, following the network's threading convention.
type Composer struct {
	Self       library.Account
	Topics     func(n int) []string
	TopicCount int
}

func New(self library.Account, vocabulary []string, topicCount int) *Composer {
	return &Composer{
		Self:       self,
		Topics:     Vocabulary(vocabulary),
		TopicCount: topicCount,
	}
}

// Vocabulary returns a generator that draws n distinct topics from a fixed
// vocabulary.
func Vocabulary(topics []string) func(int) []string {
	return func(n int) []string {
		if n > len(topics) {
			n = len(topics)
		}
		picked := make([]string, 0, n)
		for _, i := range rand.Perm(len(topics))[:n] {
			picked = append(picked, topics[i])
		}
		return picked
	}
}

// Reply builds a threaded reply to the triggering event. The reply keeps the
// trigger's kind, so a reply to a comment is itself a comment.
func (c *Composer) Reply(trigger nostr.Event, text string) Draft {
	return c.respond(trigger, text, trigger.Kind)
}

// Mention builds a response to an event that mentioned us. Same thread tags
// as a reply, but always a top-level note.
func (c *Composer) Mention(trigger nostr.Event, text string) Draft {
	return c.respond(trigger, text, actors.KindNote)
}

func (c *Composer) respond(trigger nostr.Event, text string, kind int) Draft {
	var tags nostr.Tags
	root, hasRoot := library.GetRootRef(trigger)
	if hasRoot && root == trigger.ID {
		hasRoot = false
	}
	if hasRoot {
		tags = append(tags, library.EventRef{ID: root, Marker: library.MarkerRoot}.Tag())
	}
	// a trigger with no root is itself the root of a 1-hop thread
	marker := library.MarkerReply
	if !hasRoot {
		marker = library.MarkerRoot
	}
	tags = append(tags, library.EventRef{ID: trigger.ID, Marker: marker}.Tag())
	tags = append(tags, library.AuthorRef{Account: trigger.PubKey}.Tag())
	referenced := []library.Account{c.Self, trigger.PubKey}
	for _, account := range library.Participants(trigger) {
		if slices.Contains(referenced, account) {
			continue
		}
		referenced = append(referenced, account)
		tags = append(tags, library.AuthorRef{Account: account}.Tag())
	}
	return c.finish(text, tags, kind)
}

// Thanks builds a top-level note acknowledging a payment from sender.
func (c *Composer) Thanks(sender library.Account, text string) Draft {
	tags := nostr.Tags{library.AuthorRef{Account: sender}.Tag()}
	return c.finish(text, tags, actors.KindNote)
}

// Synthesize builds a fresh top-level note that references no other event.
func (c *Composer) Synthesize(text string) Draft {
	return c.finish(text, nostr.Tags{}, actors.KindNote)
}

func (c *Composer) finish(text string, tags nostr.Tags, kind int) Draft {
	var rendered []string
	for _, topic := range c.Topics(c.TopicCount) {
		tags = append(tags, library.TopicRef{Value: topic}.Tag())
		rendered = append(rendered, "#"+topic)
	}
	content := text
	if len(rendered) > 0 {
		content = content + "\n\n" + strings.Join(rendered, " ")
	}
	return Draft{Kind: kind, Content: content, Tags: tags}
}
