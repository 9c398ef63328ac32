package bot

import (
	"math/rand"
	"time"

	"jacks/internal/domain"
)

// Random passes and plays uniformly among its options.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random strategy drawing from rng, or a time-seeded
// source when rng is nil.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{rng: rng}
}

func (r *Random) ChoosePass(view View) []domain.Card {
	out := make([]domain.Card, 0, domain.PassSize)
	for _, i := range r.rng.Perm(len(view.Hand))[:domain.PassSize] {
		out = append(out, view.Hand[i])
	}
	return out
}

func (r *Random) ChoosePlay(view View) domain.Card {
	return view.Valid[r.rng.Intn(len(view.Valid))]
}
