package bot

import (
	"math/rand"
	"reflect"
	"testing"

	"jacks/internal/domain"
)

func c(code string) domain.Card {
	card, err := domain.ParseCard(code)
	if err != nil {
		panic(err)
	}
	return card
}

func cards(codes ...string) []domain.Card {
	out := make([]domain.Card, len(codes))
	for i, code := range codes {
		out[i] = c(code)
	}
	return out
}

// trick builds plays for seats 0..n-1 in order.
func trick(codes ...string) []domain.Play {
	out := make([]domain.Play, len(codes))
	for i, code := range codes {
		out[i] = domain.Play{Player: domain.PlayerID(rune('a' + i)), Seat: i, Card: c(code)}
	}
	return out
}

func viewAt(seat int, hand []domain.Card, plays []domain.Play) View {
	return View{
		Self:    "me",
		Seat:    seat,
		Players: 4,
		Trump:   domain.SuitHearts,
		Hand:    hand,
		Valid:   domain.ValidPlays(hand, plays),
		Trick:   plays,
	}
}

func TestCarefulPassesJacksThenHighCards(t *testing.T) {
	view := View{Hand: cards("3H", "JD", "AS", "4C", "JC", "KS")}
	got := Careful{}.ChoosePass(view)
	if want := cards("JC", "JD", "AS"); !reflect.DeepEqual(got, want) {
		t.Fatalf("pass = %v, want %v", got, want)
	}
}

func TestCarefulChoosePlay(t *testing.T) {
	tests := []struct {
		name  string
		seat  int
		hand  []domain.Card
		trick []domain.Play
		want  domain.Card
	}{
		{
			name: "leads lowest plain card",
			hand: cards("3H", "JC", "5D", "4S"),
			want: c("4S"),
		},
		{
			name: "leads trump when nothing else",
			hand: cards("JH", "9H"),
			want: c("9H"),
		},
		{
			name:  "ducks under a jack",
			seat:  2,
			hand:  cards("AS", "3S", "QS", "4C"),
			trick: trick("KS", "JS"),
			want:  c("QS"),
		},
		{
			name:  "wins cheaply without a jack at stake",
			seat:  1,
			hand:  cards("3S", "9S", "AS"),
			trick: trick("5S"),
			want:  c("9S"),
		},
		{
			name:  "sheds a jack when void",
			seat:  1,
			hand:  cards("JD", "9D", "AH"),
			trick: trick("5S"),
			want:  c("JD"),
		},
		{
			name:  "drops own jack under a higher card",
			seat:  1,
			hand:  cards("JS", "3S"),
			trick: trick("QS"),
			want:  c("JS"),
		},
		{
			name:  "trumps in when void and nothing to lose",
			seat:  1,
			hand:  cards("3H", "KD"),
			trick: trick("5S"),
			want:  c("3H"),
		},
		{
			name:  "forced single card",
			seat:  3,
			hand:  cards("JS", "AD"),
			trick: trick("3S", "4S", "5S"),
			want:  c("JS"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Careful{}.ChoosePlay(viewAt(tt.seat, tt.hand, tt.trick))
			if got != tt.want {
				t.Fatalf("play = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRandomStaysLegal(t *testing.T) {
	r := NewRandom(rand.New(rand.NewSource(3)))
	hand := cards("3S", "9S", "AS", "4D", "KH")
	view := viewAt(1, hand, trick("5S"))
	for i := 0; i < 100; i++ {
		if got := r.ChoosePlay(view); got.Suit != domain.SuitSpades {
			t.Fatalf("random played %s while holding spades", got)
		}
		pass := r.ChoosePass(view)
		if len(pass) != domain.PassSize {
			t.Fatalf("pass size = %d", len(pass))
		}
		seen := map[domain.Card]bool{}
		for _, card := range pass {
			if seen[card] {
				t.Fatalf("pass repeats %s", card)
			}
			seen[card] = true
		}
	}
}

func TestParseLevelAndFactory(t *testing.T) {
	for _, name := range []string{"random", "careful", "Normal", ""} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if _, err := NewStrategy(level, nil); err != nil {
			t.Fatalf("NewStrategy(%s): %v", level, err)
		}
	}
	if _, err := ParseLevel("god"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := NewStrategy(BotLevel(9), nil); err == nil {
		t.Fatalf("expected error for unknown level value")
	}
}

func TestBotIDs(t *testing.T) {
	id := NewBotID()
	if !IsBot(id) {
		t.Fatalf("IsBot(%q) = false", id)
	}
	for _, human := range []string{"", "bot-", "bot-not-a-uuid", "5f0c6c2e-1111-2222-3333-444455556666"} {
		if IsBot(human) {
			t.Fatalf("IsBot(%q) = true", human)
		}
	}
}

func TestAgentsPlayFullHand(t *testing.T) {
	ids := []domain.PlayerID{"a", "b", "c", "d"}
	g, err := domain.NewGame(ids, domain.WithRand(rand.New(rand.NewSource(8))))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	agents := map[domain.PlayerID]*Agent{
		"a": {ID: "a", Strategy: Careful{}},
		"b": {ID: "b", Strategy: NewRandom(rand.New(rand.NewSource(1)))},
		"c": {ID: "c", Strategy: Careful{}},
		"d": {ID: "d", Strategy: NewRandom(rand.New(rand.NewSource(2)))},
	}

	if _, err := agents["a"].Play(g); err == nil {
		t.Fatalf("play during passing should fail")
	}
	for _, id := range ids {
		pass, err := agents[id].Pass(g)
		if err != nil {
			t.Fatalf("pass %s: %v", id, err)
		}
		if err := g.OfferPass(id, pass); err != nil {
			t.Fatalf("offer %s: %v", id, err)
		}
	}
	for g.Phase() == domain.PhasePlaying {
		id, _ := g.CurrentPlayer()
		card, err := agents[id].Play(g)
		if err != nil {
			t.Fatalf("agent %s: %v", id, err)
		}
		if _, err := g.PlayCard(id, card); err != nil {
			t.Fatalf("agent %s chose illegal %s: %v", id, card, err)
		}
	}
	if _, ok := g.Result(); !ok {
		t.Fatalf("hand did not complete")
	}

	stranger := &Agent{ID: "z", Strategy: Careful{}}
	if _, err := stranger.Play(g); err == nil {
		t.Fatalf("unseated agent should fail")
	}
}
