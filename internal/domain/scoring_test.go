package domain

import "testing"

// fiveTricksTwoJacks is five captured tricks holding two jacks.
func fiveTricksTwoJacks() [][]Card {
	return [][]Card{
		cards("JH", "3C", "4D", "5S"),
		cards("JC", "6C", "7D", "8S"),
		cards("9H", "10C", "QD", "KS"),
		cards("AH", "AC", "AD", "AS"),
		cards("3H", "4C", "5D", "6S"),
	}
}

func TestHandScore(t *testing.T) {
	tests := []struct {
		name    string
		tricks  [][]Card
		players int
		want    int
	}{
		{name: "four players two jacks", tricks: fiveTricksTwoJacks(), players: 4, want: -1},
		{name: "three players two jacks", tricks: fiveTricksTwoJacks(), players: 3, want: -3},
		{name: "no tricks", tricks: nil, players: 4, want: 0},
		{name: "all four jacks in one trick", tricks: [][]Card{cards("JH", "JC", "JD", "JS")}, players: 4, want: 1 - 12},
		{name: "clean tricks", tricks: [][]Card{cards("3H", "4H", "5H"), cards("6H", "7H", "8H")}, players: 3, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandScore(tt.tricks, tt.players); got != tt.want {
				t.Fatalf("HandScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestJackPenalty(t *testing.T) {
	if JackPenalty(3) != -4 || JackPenalty(4) != -3 {
		t.Fatalf("penalties = %d/%d, want -4/-3", JackPenalty(3), JackPenalty(4))
	}
}

func TestScoreHandAccumulates(t *testing.T) {
	players := []*Player{
		{ID: "a", Seat: 0, Score: 10, Taken: fiveTricksTwoJacks()},
		{ID: "b", Seat: 1, Score: -2},
		{ID: "c", Seat: 2},
		{ID: "d", Seat: 3, Taken: [][]Card{cards("3D", "4D", "5D", "6D")}},
	}
	res := scoreHand(players, SuitSpades)
	if res.Trump != SuitSpades || len(res.Seats) != 4 {
		t.Fatalf("unexpected result header: %+v", res)
	}
	if players[0].Score != 9 || res.Seats[0].HandScore != -1 || res.Seats[0].JacksCaught != 2 {
		t.Fatalf("seat 0 = %+v (score %d)", res.Seats[0], players[0].Score)
	}
	if players[1].Score != -2 || players[3].Score != 1 {
		t.Fatalf("scores = %d/%d, want -2/1", players[1].Score, players[3].Score)
	}
}
