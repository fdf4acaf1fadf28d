package bot

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bellaleprasann20/Chat-App/internal/config"
	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

// GroqBackend talks to Groq through its OpenAI compatible API.
type GroqBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGroqBackend builds a client pointed at cfg.BaseURL.
func NewGroqBackend(cfg config.GroqConfig, bot config.BotConfig) *GroqBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &GroqBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   bot.MaxTokens,
		temperature: bot.Temperature,
	}
}

func (g *GroqBackend) Name() string { return config.ProviderGroq }

// GenerateReply sends the system prompt, history and message as one completion.
func (g *GroqBackend) GenerateReply(ctx context.Context, req Request) (string, error) {
	history := trimHistory(req.History)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
