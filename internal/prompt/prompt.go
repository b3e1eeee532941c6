// Package prompt assembles the grounding prompt given to the generator.
package prompt

import (
	"fmt"
	"strings"
)

// Separator keeps the generator from conflating two unrelated chunks
// into one fact.
const Separator = "\n\n---\n\n"

// DefaultContextBudget bounds the joined context, in characters.
const DefaultContextBudget = 4000

const template = `You are a helpful local historian chatbot for the town of Glen Ellyn, IL.

Answer the following question using the historical context provided below.

Question: %s

Context:
%s

Be concise and friendly. If there's a specific year mentioned, prioritize information from that time.`

// Composer renders retrieved context plus the user question into a
// single prompt with fixed instructions.
type Composer struct {
	contextBudget int
}

func NewComposer(contextBudget int) *Composer {
	if contextBudget <= 0 {
		contextBudget = DefaultContextBudget
	}
	return &Composer{contextBudget: contextBudget}
}

// Compose embeds the question and the joined context verbatim. Contexts
// are expected best-ranked first: once the budget is exhausted the
// remaining, lower-ranked chunks are dropped. The first chunk is always
// included even if it alone exceeds the budget.
func (c *Composer) Compose(question string, contexts []string) string {
	var b strings.Builder
	for i, ctx := range contexts {
		if i > 0 && b.Len()+len(Separator)+len(ctx) > c.contextBudget {
			break
		}
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(ctx)
	}
	return fmt.Sprintf(template, question, b.String())
}
