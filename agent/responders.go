package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"nostrich/engine/library"
	"nostrich/inference"
	"nostrich/messaging/composer"
)

func (a *Agent) replyEligible(event nostr.Event) bool {
	return library.ReferencesEvent(event)
}

func (a *Agent) mentionEligible(event nostr.Event) bool {
	// anything p-tagged to us belongs to the replies monitor
	if library.TaggedWith(event, a.wallet.Account) {
		return false
	}
	name := strings.ToLower(a.conf.GetString("agentName"))
	return len(name) > 0 && strings.Contains(strings.ToLower(event.Content), name)
}

func (a *Agent) receiptEligible(event nostr.Event) bool {
	_, ok := zapSender(event)
	return ok
}

func (a *Agent) replyTo(event nostr.Event) (composer.Draft, error) {
	text, err := a.chat(a.conversationFor(event))
	if err != nil {
		return composer.Draft{}, err
	}
	return a.compose.Reply(event, text), nil
}

func (a *Agent) mentionReply(event nostr.Event) (composer.Draft, error) {
	text, err := a.chat([]inference.Message{
		{Role: "system", Content: a.persona()},
		{Role: "user", Content: "Someone mentioned you in this post, respond to it:\n\n" + event.Content},
	})
	if err != nil {
		return composer.Draft{}, err
	}
	return a.compose.Mention(event, text), nil
}

func (a *Agent) thank(event nostr.Event) (composer.Draft, error) {
	sender, _ := zapSender(event)
	text, err := a.chat([]inference.Message{
		{Role: "system", Content: a.persona()},
		{Role: "user", Content: "Someone just sent you a lightning payment. Write a short public thank you."},
	})
	if err != nil {
		return composer.Draft{}, err
	}
	return a.compose.Thanks(sender, text), nil
}

// conversationFor gives the model thread context: the root post, when we can
// still fetch it within the timeout, then the triggering event itself.
func (a *Agent) conversationFor(event nostr.Event) []inference.Message {
	messages := []inference.Message{{Role: "system", Content: a.persona()}}
	if root, ok := library.GetRootRef(event); ok {
		window := a.conf.GetDuration("queryTimeout")
		if rootEvent, found := a.gateway.FetchOne(nostr.Filter{IDs: []string{root}}, window); found {
			messages = append(messages, inference.Message{Role: "user", Content: rootEvent.Content})
		}
	}
	messages = append(messages, inference.Message{Role: "user", Content: event.Content})
	return messages
}

// replyToBest is the topic-scan selection step: the model sees the whole
// candidate batch and answers one of them.
func (a *Agent) replyToBest(candidates []nostr.Event) (composer.Draft, error) {
	var sb strings.Builder
	sb.WriteString("Here are recent posts on topics you follow. Pick the one most worth replying to and write a reply. Start your answer with the post number followed by a colon.\n\n")
	for i, candidate := range candidates {
		fmt.Fprintf(&sb, "%d: %s\n", i, truncate(candidate.Content, 280))
	}
	text, err := a.chat([]inference.Message{
		{Role: "system", Content: a.persona()},
		{Role: "user", Content: sb.String()},
	})
	if err != nil {
		return composer.Draft{}, err
	}
	choice, reply := parseChoice(text, len(candidates))
	return a.compose.Reply(candidates[choice], reply), nil
}

func (a *Agent) synthesize(topics []string) (composer.Draft, error) {
	text, err := a.chat([]inference.Message{
		{Role: "system", Content: a.persona()},
		{Role: "user", Content: "Write a short original post about " + strings.Join(topics, ", ") + ". No preamble, just the post."},
	})
	if err != nil {
		return composer.Draft{}, err
	}
	return a.compose.Synthesize(text), nil
}

// parseChoice reads a leading "<n>:" off the model's answer. A model that
// ignores the format costs us nothing worse than replying to the first post.
func parseChoice(text string, n int) (int, string) {
	head, tail, found := strings.Cut(text, ":")
	if found {
		if idx, err := strconv.Atoi(strings.TrimSpace(head)); err == nil && idx >= 0 && idx < n {
			return idx, strings.TrimSpace(tail)
		}
	}
	return 0, strings.TrimSpace(text)
}

// zapSender digs the paying pubkey out of a receipt: the uppercase P tag when
// the wallet provided one, otherwise the signer of the zap request carried in
// the description tag.
func zapSender(event nostr.Event) (library.Account, bool) {
	if sender, ok := library.GetFirstTag(event, "P"); ok && len(sender) == 64 {
		return sender, true
	}
	description, ok := library.GetFirstTag(event, "description")
	if !ok {
		return "", false
	}
	var request nostr.Event
	if err := json.Unmarshal([]byte(description), &request); err != nil {
		library.LogCLI("could not parse zap request: "+err.Error(), 2)
		return "", false
	}
	if len(request.PubKey) != 64 {
		return "", false
	}
	return request.PubKey, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
