// Package convo assembles the per-request conversation context consumed
// by the prompt builder.
package convo

import (
	"github.com/avaaz-ai/avaaz/pkg/language"
	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/sentiment"
)

// Context is the merged view of one request: detected language, sentiment,
// prior exchanges (oldest first), and channel metadata. Assembled fresh per
// request and discarded afterwards.
type Context struct {
	UserText        string
	Language        language.Result
	Sentiment       sentiment.Result
	History         []message.Exchange
	ChannelMetadata map[string]string
}

// Assemble merges the analysis results into a Context. Pure: no I/O, input
// slices and maps are copied, never aliased, and history ordering is
// preserved.
func Assemble(
	utterance message.Utterance,
	lang language.Result,
	sent sentiment.Result,
	history []message.Exchange,
	channelMetadata map[string]string,
) Context {
	c := Context{
		UserText:  utterance.RawText,
		Language:  lang,
		Sentiment: sent,
	}
	if len(history) > 0 {
		c.History = make([]message.Exchange, len(history))
		copy(c.History, history)
	}
	if len(channelMetadata) > 0 {
		c.ChannelMetadata = make(map[string]string, len(channelMetadata))
		for k, v := range channelMetadata {
			c.ChannelMetadata[k] = v
		}
	}
	return c
}
