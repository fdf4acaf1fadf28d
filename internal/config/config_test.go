package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Bot.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Match.BotFallback)
	assert.Equal(t, time.Second, cfg.Match.GreetingDelay)
	assert.Equal(t, time.Second, cfg.Match.ReplyDelayMin)
	assert.Equal(t, 2*time.Second, cfg.Match.ReplyDelayMax)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Groq.Model)
	assert.Equal(t, ProviderNone, cfg.BotProvider())
}

func TestLoadPortVariants(t *testing.T) {
	tests := []struct {
		port    string
		want    string
		wantErr bool
	}{
		{port: "9000", want: ":9000"},
		{port: ":9001", want: ":9001"},
		{port: "127.0.0.1:9002", want: "127.0.0.1:9002"},
		{port: "90 00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Server.Addr)
		})
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestBotProviderAutoPrefersGroq(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("ARK_API_KEY", "ark")
	t.Setenv("ARK_MODEL", "doubao")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, cfg.BotProvider())

	t.Setenv("GROQ_API_KEY", "")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderArk, cfg.BotProvider())
}

func TestLoadRejectsInvalidBotSettings(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown provider":     {"BOT_PROVIDER": "hal9000"},
		"groq without key":     {"BOT_PROVIDER": "groq"},
		"ark without model":    {"BOT_PROVIDER": "ark"},
		"inverted delay range": {"MATCH_REPLY_DELAY_MIN": "3s", "MATCH_REPLY_DELAY_MAX": "1s"},
		"malformed duration":   {"BOT_TIMEOUT": "soon"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
