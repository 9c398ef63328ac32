package bot

import (
	"strings"

	"github.com/google/uuid"
)

const botIDPrefix = "bot-"

// NewBotID returns a fresh seat identifier for a bot.
func NewBotID() string {
	return botIDPrefix + uuid.NewString()
}

// IsBot reports whether id was produced by NewBotID.
func IsBot(id string) bool {
	rest, ok := strings.CutPrefix(id, botIDPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
