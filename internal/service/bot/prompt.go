package bot

import (
	"fmt"
	"strings"

	"github.com/bellaleprasann20/Chat-App/internal/model/persona"
)

// chatRules apply to every persona.
var chatRules = []string{
	"Never reveal that you are a bot unless asked directly",
	"Reply in the language the stranger uses",
	"Stay on casual topics and keep things friendly",
}

// BuildSystemPrompt renders a persona into the system instruction.
func BuildSystemPrompt(p persona.Persona) string {
	var builder strings.Builder
	hint := strings.TrimSpace(p.PromptHint)
	if hint == "" {
		hint = fmt.Sprintf("You are %s, a stranger chatting anonymously. Keep responses short (1-3 sentences) and ask questions about the other person.", p.Name)
	}
	builder.WriteString(hint)

	if p.Tone != "" {
		builder.WriteString("\n\nTone: ")
		builder.WriteString(p.Tone)
	}
	if len(p.Traits) > 0 {
		builder.WriteString("\nTraits: ")
		builder.WriteString(strings.Join(p.Traits, ", "))
	}

	builder.WriteString("\n\nRules:\n- ")
	builder.WriteString(strings.Join(chatRules, "\n- "))

	if p.OpeningLine != "" {
		builder.WriteString("\n\nExample opener: ")
		builder.WriteString(p.OpeningLine)
	}
	return builder.String()
}
