package entropy

// Sequence replays a fixed list of draws, cycling when exhausted.
// Used by tests to force specific branches.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence creates a Sequence. With no values it always returns 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.pos
}

// Constant always returns the same value.
type Constant float64

// Float64 returns c.
func (c Constant) Float64() float64 {
	return float64(c)
}

// Recorder wraps a Source and keeps every value it hands out, so a run can be
// replayed later with NewSequence(r.Draws()...).
type Recorder struct {
	src   Source
	draws []float64
}

// NewRecorder wraps src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src}
}

// Float64 draws from the wrapped source and records the value.
func (r *Recorder) Float64() float64 {
	v := r.src.Float64()
	r.draws = append(r.draws, v)
	return v
}

// Draws returns a copy of the recorded values.
func (r *Recorder) Draws() []float64 {
	out := make([]float64, len(r.draws))
	copy(out, r.draws)
	return out
}
