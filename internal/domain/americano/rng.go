package americano

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31

	// VariantCount is the number of distinct schedules regeneration cycles through.
	VariantCount = 4

	seedStride          = 7919
	seedPerturbationMod = 97
)

// Source is a linear congruential generator. Output depends only on the seed and the number
// of prior calls, which is what makes regeneration reproducible.
type Source struct {
	state uint64
}

func NewSource(seed int64) *Source {
	state := seed % lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	return &Source{state: uint64(state)}
}

// Next returns a value in [0,1).
func (s *Source) Next() float64 {
	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(s.state) / lcgModulus
}

// Intn returns a value in [0,n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("americano: Intn called with n <= 0")
	}
	v := int(s.Next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Shuffle permutes n elements with a Fisher-Yates pass, calling swap like math/rand.Shuffle.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, s.Intn(i+1))
	}
}

// Variant maps a regenerate counter onto 0..VariantCount-1.
func Variant(regenerateCount int) int {
	v := regenerateCount % VariantCount
	if v < 0 {
		v += VariantCount
	}
	return v
}

// DeriveSeed combines the variant with a perturbation from the event identifier length.
// Counters that differ by a multiple of VariantCount yield the same seed.
func DeriveSeed(regenerateCount int, eventID string) int64 {
	return int64(Variant(regenerateCount))*seedStride + int64(len(eventID)%seedPerturbationMod)
}
