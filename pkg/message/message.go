// Package message holds the data types that flow through one pipeline
// invocation. Every value is created, used, and discarded within a single
// inbound event; nothing here is shared across invocations.
package message

import "github.com/avaaz-ai/avaaz/pkg/language"

// Utterance is one inbound user message plus channel metadata.
// Immutable after creation; owned by the pipeline invocation.
type Utterance struct {
	RawText            string
	SourceLanguageHint string
	ChannelID          string
	HasAudio           bool
	Audio              []byte
	TraceID            string
	Metadata           map[string]string
}

// Exchange is one prior (utterance, reply) pair from the history store.
type Exchange struct {
	Utterance string
	Reply     string
}

// OutboundReply is the terminal artifact handed to the delivery
// collaborator. Language always matches the detected input language.
type OutboundReply struct {
	Text     string
	Audio    []byte
	Language language.Language
}
