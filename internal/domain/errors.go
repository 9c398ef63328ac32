package domain

import "errors"

var (
	ErrInvalidPlayerCount = errors.New("jacks needs 3 or 4 players")
	ErrInvalidSelection   = errors.New("invalid card selection")
	ErrIllegalMove        = errors.New("illegal move")
	ErrDuplicateOffer     = errors.New("cards already passed this hand")
)
