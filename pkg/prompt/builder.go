// Package prompt renders a conversation context into the generation
// backend's system instruction.
package prompt

import (
	"fmt"
	"strings"

	"github.com/avaaz-ai/avaaz/pkg/convo"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/sentiment"
)

// DefaultPersona is the fixed persona description used when no override
// is configured.
const DefaultPersona = "You are a friendly, multilingual conversational assistant with a warm, personable style. You can engage in casual chitchat, deeper emotional conversations, fun interactions, and practical questions."

// Builder renders deterministic generation requests. Given structurally
// equal contexts, Build produces byte-identical output.
type Builder struct {
	persona       string
	historyWindow int
}

// NewBuilder creates a prompt builder. An empty persona selects
// DefaultPersona; historyWindow bounds how many prior exchanges are
// rendered into the instruction (0 disables history rendering).
func NewBuilder(persona string, historyWindow int) *Builder {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	return &Builder{persona: persona, historyWindow: historyWindow}
}

// Build renders the system instruction and passes the user's text through
// verbatim. Pure function of the context.
func (b *Builder) Build(c convo.Context) llm.Request {
	var sb strings.Builder
	sb.WriteString(b.persona)
	sb.WriteString("\n\n")

	lang := c.Language.Language
	fmt.Fprintf(&sb, "The user is writing in %s. Reply ONLY in %s.\n", lang, lang)
	fmt.Fprintf(&sb, "The user's sentiment is %s; respond with a %s tone.\n",
		c.Sentiment.Category, c.Sentiment.Tone)

	g := sentiment.ResponseGuidelines(c.Sentiment)
	fmt.Fprintf(&sb, "Keep the reply %s.", g.ResponseLength)
	if g.Empathetic {
		sb.WriteString(" Acknowledge the user's feelings before anything else.")
	}
	if g.Enthusiastic {
		sb.WriteString(" Match the user's energy.")
	}
	if g.Formal {
		sb.WriteString(" Keep a professional register.")
	}
	if !g.UseEmoji {
		sb.WriteString(" Do not use emoji.")
	}
	if len(g.SuggestedFeatures) > 0 {
		fmt.Fprintf(&sb, " Lean on: %s.", strings.Join(g.SuggestedFeatures, ", "))
	}
	sb.WriteString("\n")

	if b.historyWindow > 0 && len(c.History) > 0 {
		window := c.History
		if len(window) > b.historyWindow {
			window = window[len(window)-b.historyWindow:]
		}
		sb.WriteString("\nRecent conversation:\n")
		for _, ex := range window {
			fmt.Fprintf(&sb, "User: %s\nAssistant: %s\n", ex.Utterance, ex.Reply)
		}
	}

	return llm.Request{
		SystemPrompt: sb.String(),
		UserText:     c.UserText,
	}
}
