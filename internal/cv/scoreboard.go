package cv

import "sync"

// Scoreboard holds the observability maps the external tuner reads: the
// latest score for every evaluated template and the latest passing score per
// template. Writers (matcher workers) and readers (the tuner) run on
// different goroutines; readers always get a copy, never the live map.
type Scoreboard struct {
	mu        sync.RWMutex
	lastScore map[string]float64
	lastPass  map[string]float64
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		lastScore: make(map[string]float64),
		lastPass:  make(map[string]float64),
	}
}

// Record stores the best score seen for a template this evaluation,
// passing or not.
func (s *Scoreboard) Record(name string, score float64) {
	s.mu.Lock()
	s.lastScore[name] = score
	s.mu.Unlock()
}

// RecordPass stores a score that passed the template threshold. The value
// is retained until the next passing match overwrites it.
func (s *Scoreboard) RecordPass(name string, score float64) {
	s.mu.Lock()
	s.lastPass[name] = score
	s.mu.Unlock()
}

// LastScores returns a snapshot of the latest score per evaluated template.
func (s *Scoreboard) LastScores() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.lastScore))
	for k, v := range s.lastScore {
		out[k] = v
	}
	return out
}

// LastPasses returns a snapshot of the latest passing score per template.
func (s *Scoreboard) LastPasses() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.lastPass))
	for k, v := range s.lastPass {
		out[k] = v
	}
	return out
}
