package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// 机器人后端提供方。
const (
	ProviderAuto = "auto"
	ProviderGroq = "groq"
	ProviderArk  = "ark"
	ProviderNone = "none"
)

// ErrMissingSecret 表示非开发环境缺少 JWT_SECRET。
var ErrMissingSecret = errors.New("JWT_SECRET is required outside development")

// Config 聚合整个服务的配置项。
type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server ServerConfig
	Auth   AuthConfig
	Bot    BotConfig
	Groq   GroqConfig
	AI     AIConfig
	Match  MatchConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Addr 由 Port 推导得到。
	Addr string
}

// AuthConfig 描述令牌校验配置。
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// BotConfig 描述随机聊天机器人的行为。
type BotConfig struct {
	Enabled     bool          `env:"BOT_ENABLED" envDefault:"true"`
	Provider    string        `env:"BOT_PROVIDER" envDefault:"auto"`
	PersonaID   string        `env:"BOT_PERSONA" envDefault:"stranger"`
	MaxTokens   int           `env:"BOT_MAX_TOKENS" envDefault:"150"`
	Temperature float32       `env:"BOT_TEMPERATURE" envDefault:"0.8"`
	Timeout     time.Duration `env:"BOT_TIMEOUT" envDefault:"10s"`
}

// GroqConfig 描述 OpenAI 兼容的 Groq 接口。
type GroqConfig struct {
	APIKey  string `env:"GROQ_API_KEY"`
	BaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	Model   string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
}

// Enabled 表示是否提供了 Groq 密钥。
func (c GroqConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// AIConfig 描述方舟大模型相关配置。
type AIConfig struct {
	APIKey      string   `env:"ARK_API_KEY"`
	AccessKey   string   `env:"ARK_ACCESS_KEY"`
	SecretKey   string   `env:"ARK_SECRET_KEY"`
	Model       string   `env:"ARK_MODEL"`
	BaseURL     string   `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string   `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature *float64 `env:"ARK_TEMPERATURE"`
	TopP        *float64 `env:"ARK_TOP_P"`
	MaxTokens   *int     `env:"ARK_MAX_TOKENS"`
}

// MatchConfig 描述匹配与延迟策略。
type MatchConfig struct {
	BotFallback   time.Duration `env:"MATCH_BOT_FALLBACK" envDefault:"10s"`
	GreetingDelay time.Duration `env:"MATCH_GREETING_DELAY" envDefault:"1s"`
	ReplyDelayMin time.Duration `env:"MATCH_REPLY_DELAY_MIN" envDefault:"1s"`
	ReplyDelayMax time.Duration `env:"MATCH_REPLY_DELAY_MAX" envDefault:"2s"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := resolveAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr
	cfg.Bot.Provider = strings.ToLower(strings.TrimSpace(cfg.Bot.Provider))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment 表示是否运行在开发模式。
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// BotProvider 返回实际生效的机器人后端。
func (c *Config) BotProvider() string {
	switch c.Bot.Provider {
	case ProviderGroq, ProviderArk, ProviderNone:
		return c.Bot.Provider
	}
	if c.Groq.Enabled() {
		return ProviderGroq
	}
	if c.AI.Enabled() {
		return ProviderArk
	}
	return ProviderNone
}

func (c *Config) validate() error {
	if !c.IsDevelopment() && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingSecret
	}

	switch c.Bot.Provider {
	case ProviderAuto, ProviderNone:
	case ProviderGroq:
		if !c.Groq.Enabled() {
			return fmt.Errorf("BOT_PROVIDER=groq requires GROQ_API_KEY")
		}
	case ProviderArk:
		if !c.AI.Enabled() {
			return fmt.Errorf("BOT_PROVIDER=ark requires ARK_MODEL and credentials")
		}
	default:
		return fmt.Errorf("invalid BOT_PROVIDER value %q", c.Bot.Provider)
	}

	if c.Bot.Timeout <= 0 {
		return fmt.Errorf("invalid BOT_TIMEOUT value %s", c.Bot.Timeout)
	}
	if c.Match.BotFallback <= 0 {
		return fmt.Errorf("invalid MATCH_BOT_FALLBACK value %s", c.Match.BotFallback)
	}
	if c.Match.ReplyDelayMin < 0 || c.Match.ReplyDelayMax < c.Match.ReplyDelayMin {
		return fmt.Errorf("invalid reply delay range %s..%s", c.Match.ReplyDelayMin, c.Match.ReplyDelayMax)
	}
	return nil
}

// resolveAddr 解析服务器监听地址。
func resolveAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}
