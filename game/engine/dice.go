package engine

import "golang.org/x/exp/rand"

// Dice is a seeded random source that survives JSON persistence. Every call to
// roll derives a fresh generator from Seed and an advancing Epoch, so a restored
// game continues with the same sequence it would have produced in memory.
type Dice struct {
	Seed  uint64 `json:"seed"`
	Epoch uint64 `json:"epoch"`
}

func (d *Dice) roll() *rand.Rand {
	d.Epoch++
	return rand.New(rand.NewSource(d.Seed ^ (d.Epoch * 0x9E3779B97F4A7C15)))
}

// Intn returns a value in [0, n)
func (d *Dice) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return d.roll().Intn(n)
}

// Shuffle permutes n elements through swap
func (d *Dice) Shuffle(n int, swap func(i, j int)) {
	if n < 2 {
		return
	}
	d.roll().Shuffle(n, swap)
}
