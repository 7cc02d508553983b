// Package assistant answers questions about the indexed document while
// keeping a bounded conversation history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragchat/internal/domain"
	"ragchat/internal/logger"
	"ragchat/internal/memory"
)

// DefaultSystemPrompt frames every conversation.
const DefaultSystemPrompt = "You are a helpful assistant answering questions about a document. " +
	"Use the provided information when it is relevant and say so when it does not contain the answer."

// ErrEmptyQuestion is returned for blank input.
var ErrEmptyQuestion = errors.New("question is empty")

// State is the phase of the current turn.
type State int

const (
	Idle State = iota
	Retrieving
	Generating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Retrieving:
		return "retrieving"
	case Generating:
		return "generating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Retriever finds the chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// Options configures an Assistant.
type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Assistant runs retrieve-then-generate turns. It is not safe for
// concurrent use.
type Assistant struct {
	retriever Retriever
	chat      domain.ChatModel
	history   *memory.Window
	opts      Options
	state     State
}

// New creates an Assistant. A nil history gets a window of the default size.
func New(retriever Retriever, chat domain.ChatModel, history *memory.Window, opts Options) *Assistant {
	if history == nil {
		history = memory.NewWindow(memory.DefaultMaxTurns)
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &Assistant{retriever: retriever, chat: chat, history: history, opts: opts}
}

// Ask answers question. The turn is added to history only when both
// retrieval and generation succeed.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	defer func() { a.state = Idle }()

	a.state = Retrieving
	results, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	logger.Debug("%d segments above threshold, history %d/%d turns", len(results), a.history.Len(), a.history.Cap())

	a.state = Generating
	messages := BuildMessages(a.opts.SystemPrompt, a.history.Turns(), question, results)
	answer, err := a.chat.Chat(ctx, messages, domain.ChatOptions{
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	a.history.Append(domain.Turn{Question: question, Answer: answer})
	return answer, nil
}

// State returns the current phase. Outside of Ask it is always Idle.
func (a *Assistant) State() State { return a.state }

// History returns a copy of the stored turns, oldest first.
func (a *Assistant) History() []domain.Turn { return a.history.Turns() }

// ModelName reports the underlying chat model.
func (a *Assistant) ModelName() string { return a.chat.ModelName() }

// BuildMessages assembles the chat request for one turn: the system
// prompt, prior turns in order, then the question augmented with the
// retrieved segments. With no segments the question is sent as is.
func BuildMessages(systemPrompt string, history []domain.Turn, question string, results []domain.SearchResult) []domain.Message {
	messages := make([]domain.Message, 0, 2+2*len(history))
	if systemPrompt != "" {
		messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	}
	for _, t := range history {
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: t.Question},
			domain.Message{Role: domain.RoleAssistant, Content: t.Answer},
		)
	}
	return append(messages, domain.Message{Role: domain.RoleUser, Content: augment(question, results)})
}

func augment(question string, results []domain.SearchResult) string {
	if len(results) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\n\nAnswer using the following information:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Chunk.Text)
	}
	return b.String()
}
