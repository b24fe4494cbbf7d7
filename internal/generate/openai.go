package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/vigilhq/mongoose/internal/director"
)

// historyWindow bounds how much conversation is replayed to the model.
const historyWindow = 10

// OpenAI implements Generator with a chat-completion call.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(apiKey, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	prof := director.ProfileFor(req.Persona)

	messages := []openai.ChatCompletionMessage{
		{Role: "system", Content: fmt.Sprintf(
			"You are %s. %s\nStay in character. Reply with one short conversational message, nothing else.\n\nCurrent instructions:\n%s",
			prof.Display, prof.Style, req.Directive)},
	}
	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, m := range history {
		role := "assistant"
		if m.FromCounterparty {
			role = "user"
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: "user", Content: req.Latest})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
