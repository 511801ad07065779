package library

import (
	"github.com/nbd-wtf/go-nostr"
)

// Positional markers used by the threading convention on "e" tags.
const (
	MarkerRoot  = "root"
	MarkerReply = "reply"
)

// EventRef is a reference to another event, optionally marked as the thread
// root or the event being replied to.
type EventRef struct {
	ID     Sha256
	Marker string
}

func (r EventRef) Tag() nostr.Tag {
	if r.Marker == "" {
		return nostr.Tag{"e", r.ID}
	}
	return nostr.Tag{"e", r.ID, "", r.Marker}
}

// AuthorRef is a reference to a participant's pubkey.
type AuthorRef struct {
	Account Account
}

func (r AuthorRef) Tag() nostr.Tag {
	return nostr.Tag{"p", r.Account}
}

// TopicRef is a hashtag.
type TopicRef struct {
	Value string
}

func (r TopicRef) Tag() nostr.Tag {
	return nostr.Tag{"t", r.Value}
}

func GetFirstTag(e nostr.Event, startsWith string) (string, bool) {
	for _, tag := range e.Tags {
		if tag.StartsWith([]string{startsWith}) {
			return tag.Value(), true
		}
	}
	return "", false
}

// GetRootRef returns the event id marked as the thread root, if any.
func GetRootRef(e nostr.Event) (Sha256, bool) {
	return getMarkedRef(e, MarkerRoot)
}

// GetReplyRef returns the event id marked as the direct reply target, if any.
func GetReplyRef(e nostr.Event) (Sha256, bool) {
	return getMarkedRef(e, MarkerReply)
}

func getMarkedRef(e nostr.Event, marker string) (Sha256, bool) {
	for _, tag := range e.Tags {
		for i, s := range tag {
			if s == marker {
				if i == 3 && tag[0] == "e" && len(tag[1]) == 64 {
					return tag[1], true
				}
			}
		}
	}
	return "", false
}

// ReferencesEvent reports whether e carries at least one "e" tag.
func ReferencesEvent(e nostr.Event) bool {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "e" {
			return true
		}
	}
	return false
}

// Participants returns every pubkey referenced by a "p" tag, in tag order.
func Participants(e nostr.Event) (accounts []Account) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "p" && len(tag[1]) == 64 {
			accounts = append(accounts, tag[1])
		}
	}
	return
}

// TaggedWith reports whether e carries a "p" tag for the given account.
func TaggedWith(e nostr.Event, account Account) bool {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "p" && tag[1] == account {
			return true
		}
	}
	return false
}
