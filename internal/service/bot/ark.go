package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/bellaleprasann20/Chat-App/internal/config"
	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

// ArkBackend runs replies through an eino prompt→model chain.
type ArkBackend struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkBackend creates the Ark chat model and compiles the chain.
func NewArkBackend(ctx context.Context, cfg config.AIConfig) (*ArkBackend, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewChainBackend(ctx, chatModel)
}

// NewChainBackend compiles the reply chain around any eino chat model.
func NewChainBackend(ctx context.Context, chatModel model.ChatModel) (*ArkBackend, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}
	return &ArkBackend{chain: runnable}, nil
}

func (a *ArkBackend) Name() string { return config.ProviderArk }

// GenerateReply invokes the compiled chain.
func (a *ArkBackend) GenerateReply(ctx context.Context, req Request) (string, error) {
	resp, err := a.chain.Invoke(ctx, map[string]any{
		"system":  req.System,
		"history": historyMessages(req.History),
		"query":   req.Message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Content), nil
}

func historyMessages(turns []chat.Turn) []*schema.Message {
	turns = trimHistory(turns)
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
