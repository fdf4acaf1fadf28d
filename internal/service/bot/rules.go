package bot

import (
	"strings"
)

var (
	greetings = []string{
		"Hey! How's it going?",
		"Hi there! What's up?",
		"Hello! Nice to meet you!",
		"Hey! What brings you here?",
		"Hi! How are you doing?",
	}
	followUps = []string{
		"What are your hobbies?",
		"Where are you from?",
		"What do you like to do for fun?",
		"What's your favorite movie?",
		"Do you have any pets?",
	}
	acknowledgements = []string{
		"That's interesting! Tell me more.",
		"Cool! I'd love to hear about that.",
		"Nice! What else?",
		"Awesome! That sounds fun.",
		"That's great! How did you get into that?",
	}
	goodbyes = []string{
		"It was nice chatting with you!",
		"Take care! See you around!",
		"Bye! Have a great day!",
		"Thanks for the chat! Goodbye!",
		"See you later! Stay safe!",
	}
	questionAcks = []string{
		"That's a good question! I'd say it depends on the situation.",
		"Hmm, let me think... probably yes!",
		"I'm not sure, what do you think?",
		"Interesting question! I haven't thought about that before.",
	}
)

// DisabledReply is sent when the bot is switched off.
const DisabledReply = "Bot is currently disabled."

// ruleCategory names which table a rule-based reply was drawn from.
type ruleCategory int

const (
	categoryGreeting ruleCategory = iota
	categoryGoodbye
	categoryQuestionAck
	categoryFollowUp
	categoryAcknowledgement
)

func (c ruleCategory) pool() []string {
	switch c {
	case categoryGreeting:
		return greetings
	case categoryGoodbye:
		return goodbyes
	case categoryQuestionAck:
		return questionAcks
	case categoryFollowUp:
		return followUps
	default:
		return acknowledgements
	}
}

// classify picks the reply table for message given the history length.
// Keyword checks are plain substring matches on the lower-cased text.
func classify(message string, historyLen int) ruleCategory {
	if historyLen == 0 {
		return categoryGreeting
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "bye", "goodbye", "see you"):
		return categoryGoodbye
	case strings.Contains(lower, "?"):
		return categoryQuestionAck
	case containsAny(lower, "hello", "hi", "hey"):
		return categoryGreeting
	case historyLen%3 == 0:
		return categoryFollowUp
	default:
		return categoryAcknowledgement
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
