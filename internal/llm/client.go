package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"storebot/pkg"
)

// ErrUnavailable wraps any transport or provider failure; callers degrade
// to a fallback reply instead of surfacing it to the user.
var ErrUnavailable = errors.New("llm unavailable")

// Client is the external LLM collaborator: given prior history and the
// new user text it returns assistant text.
type Client interface {
	Generate(ctx context.Context, history []pkg.ConversationMessage, userText string) (string, error)
}

// Config holds chat model settings.
type Config struct {
	Model        string
	APIKey       string
	BaseURL      string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	SystemPrompt string
}

const defaultTimeout = 20 * time.Second

// ChatClient calls an OpenAI-compatible chat completion endpoint.
type ChatClient struct {
	model   *openai.ChatModel
	timeout time.Duration
	system  string
}

// NewChatClient creates the chat model client.
func NewChatClient(ctx context.Context, config Config) (*ChatClient, error) {
	maxTokens := config.MaxTokens
	temperature := float32(config.Temperature)

	modelConfig := &openai.ChatModelConfig{
		APIKey:      config.APIKey,
		BaseURL:     config.BaseURL,
		Model:       config.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	model, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ChatClient{
		model:   model,
		timeout: timeout,
		system:  config.SystemPrompt,
	}, nil
}

// Generate sends the bounded history plus the new user message to the
// model. A slow call times out rather than blocking the session.
func (c *ChatClient) Generate(ctx context.Context, history []pkg.ConversationMessage, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.model.Generate(ctx, buildMessages(c.system, history, userText))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out.Content, nil
}

// buildMessages converts stored history into model messages, system
// prompt first, the new user message last.
func buildMessages(system string, history []pkg.ConversationMessage, userText string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	for _, msg := range history {
		switch msg.Role {
		case pkg.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}
	return append(messages, schema.UserMessage(userText))
}
