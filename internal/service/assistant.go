// Package service wires retrieval, prompt assembly, and generation into
// the question-answering pipeline.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
	"github.com/skedroski/glen-ellyn-chatbot/internal/prompt"
	"github.com/skedroski/glen-ellyn-chatbot/internal/retriever"
)

// EmptyQuestionAnswer is returned for blank input instead of calling the
// generator.
const EmptyQuestionAnswer = "Please enter a question."

// Answer is a generated response plus the chunks that grounded it.
type Answer struct {
	Text    string
	Sources []domain.SearchResult
}

// Assistant answers free-text questions about local history, grounded in
// the indexed corpus.
type Assistant struct {
	retriever *retriever.Retriever
	composer  *prompt.Composer
	generator domain.Generator
	topK      int
}

func NewAssistant(r *retriever.Retriever, c *prompt.Composer, g domain.Generator, topK int) *Assistant {
	if topK <= 0 {
		topK = retriever.DefaultTopK
	}
	return &Assistant{retriever: r, composer: c, generator: g, topK: topK}
}

// Answer retrieves context for the question, composes the grounding
// prompt, and asks the generator. A blank question short-circuits with a
// friendly message.
func (a *Assistant) Answer(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{Text: EmptyQuestionAnswer}, nil
	}
	results, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk.Text
	}
	p := a.composer.Compose(question, contexts)
	text, err := a.generator.Generate(ctx, p)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	return Answer{Text: strings.TrimSpace(text), Sources: results}, nil
}
