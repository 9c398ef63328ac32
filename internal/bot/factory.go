package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelCareful
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelRandom:
		return "random"
	case BotLevelCareful:
		return "careful"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a level name to a BotLevel.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "easy":
		return BotLevelRandom, nil
	case "careful", "normal", "":
		return BotLevelCareful, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewStrategy creates a new strategy for the level. rng is only used by
// BotLevelRandom and may be nil otherwise.
func NewStrategy(level BotLevel, rng *rand.Rand) (Strategy, error) {
	switch level {
	case BotLevelRandom:
		return NewRandom(rng), nil
	case BotLevelCareful:
		return Careful{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
