package app

import "jacks/internal/domain"

// MinPlayersToStartGame and MaxSeats bound the roster a master may ready up.
// The engine rejects any other count, so keep them tied to the domain values.
const (
	MinPlayersToStartGame = domain.MinPlayers
	MaxSeats              = domain.MaxPlayers
)

// Table phases as exposed in match labels and state snapshots.
const (
	PhaseLobby   = "lobby"
	PhasePassing = "passing"
	PhasePlaying = "playing"
)
