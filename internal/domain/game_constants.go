package domain

const (
	// DeckSize is the number of cards in a Jacks deck (four suits, threes through aces).
	DeckSize = 48
	// PassSize is the number of cards each player hands to the next seat.
	PassSize = 3
	// MinPlayers and MaxPlayers bound the table size; both divide DeckSize.
	MinPlayers = 3
	MaxPlayers = 4
)

const (
	jackPenaltyThreePlayers = -4
	jackPenaltyFourPlayers  = -3
)
