package domain

// JackPenalty is the score added per captured jack: -4 at a three-player
// table, -3 at a four-player one.
func JackPenalty(players int) int {
	if players == 3 {
		return jackPenaltyThreePlayers
	}
	return jackPenaltyFourPlayers
}

// CountJacks counts jacks across captured tricks.
func CountJacks(tricks [][]Card) int {
	n := 0
	for _, trick := range tricks {
		for _, c := range trick {
			if c.Rank == RankJ {
				n++
			}
		}
	}
	return n
}

// HandScore is one point per trick won plus the jack penalty per captured jack.
// It has no floor.
func HandScore(tricks [][]Card, players int) int {
	return len(tricks) + CountJacks(tricks)*JackPenalty(players)
}

// SeatResult is one seat's line in a completed hand.
type SeatResult struct {
	Player      PlayerID `json:"user_id"`
	Seat        int      `json:"seat"`
	TricksWon   int      `json:"tricks_won"`
	JacksCaught int      `json:"jacks_caught"`
	HandScore   int      `json:"hand_score"`
	Score       int      `json:"score"` // running score after this hand
}

// HandResult is the scoring summary of a completed hand, in seat order.
type HandResult struct {
	Trump Suit
	Seats []SeatResult
}

// scoreHand adds each player's hand score to their running score.
func scoreHand(players []*Player, trump Suit) HandResult {
	res := HandResult{Trump: trump, Seats: make([]SeatResult, 0, len(players))}
	for _, p := range players {
		hand := HandScore(p.Taken, len(players))
		p.Score += hand
		res.Seats = append(res.Seats, SeatResult{
			Player:      p.ID,
			Seat:        p.Seat,
			TricksWon:   len(p.Taken),
			JacksCaught: CountJacks(p.Taken),
			HandScore:   hand,
			Score:       p.Score,
		})
	}
	return res
}
