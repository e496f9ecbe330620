// Package bot implements the canned auto-reply used by the chat playground.
package bot

import (
	"math/rand/v2"
	"strings"
)

// Prefix marks bot replies in a room.
const Prefix = "Bot: "

var loremSentences = []string{
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris.",
	"Duis aute irure dolor in reprehenderit in voluptate velit esse.",
	"Excepteur sint occaecat cupidatat non proident sunt in culpa.",
	"Curabitur pretium tincidunt lacus nunc nonummy metus.",
	"Vestibulum ante ipsum primis in faucibus orci luctus.",
	"Pellentesque habitant morbi tristique senectus et netus.",
	"Mauris blandit aliquet elit eget tincidunt nibh pulvinar.",
	"Vivamus suscipit tortor eget felis porttitor volutpat.",
}

// Sentences returns a copy of the filler pool used for vowel matches.
func Sentences() []string {
	out := make([]string, len(loremSentences))
	copy(out, loremSentences)
	return out
}

// Responder picks a reply for a chat message. It holds no per-room state.
type Responder struct {
	pick func(n int) int
}

// Option configures a Responder.
type Option func(*Responder)

// WithPicker replaces the random index source, mostly for tests. pick must
// return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Responder) {
		r.pick = pick
	}
}

// New creates a Responder.
func New(opts ...Option) *Responder {
	r := &Responder{pick: rand.IntN}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reply returns the bot's answer to message and whether it has one. Rules
// are checked in order against the trimmed, lower-cased text.
func (r *Responder) Reply(message string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(message))

	switch {
	case text == "halo":
		return "apa kabar", true
	case strings.Contains(text, "nama"):
		return "nama saya abdu", true
	case strings.ContainsAny(text, "aiueo"):
		return loremSentences[r.pick(len(loremSentences))], true
	default:
		return "", false
	}
}
