package llm

import "sync"

// State is the endpoint reliability state shared by every concurrent Query on one gateway.
type State struct {
	mu                     sync.Mutex
	endpoints              []string
	consecutiveFailures    int
	maxConsecutiveFailures int
	available              bool
}

// StateSnapshot is a copy of State for diagnostics.
type StateSnapshot struct {
	Endpoints              []string `json:"endpoints"`
	ConsecutiveFailures    int      `json:"consecutive_failures"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures"`
	Available              bool     `json:"available"`
}

func NewState(endpoints []string, maxConsecutiveFailures int) *State {
	return &State{
		endpoints:              append([]string(nil), endpoints...),
		maxConsecutiveFailures: maxConsecutiveFailures,
		available:              len(endpoints) > 0,
	}
}

// Order returns the current priority order.
func (s *State) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.endpoints...)
}

// Succeeded resets the failure counter and swaps endpoint into position 0.
func (s *State) Succeeded(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures = 0
	s.available = true
	for i, e := range s.endpoints {
		if e == endpoint {
			s.endpoints[0], s.endpoints[i] = s.endpoints[i], s.endpoints[0]
			return
		}
	}
}

func (s *State) Failed() {
	s.mu.Lock()
	s.consecutiveFailures++
	s.mu.Unlock()
}

// Exhausted is called after a query ran out of endpoints. It clears the advisory
// availability flag once the failure threshold is reached and reports the new flag.
func (s *State) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consecutiveFailures >= s.maxConsecutiveFailures {
		s.available = false
	}
	return s.available
}

func (s *State) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		Endpoints:              append([]string(nil), s.endpoints...),
		ConsecutiveFailures:    s.consecutiveFailures,
		MaxConsecutiveFailures: s.maxConsecutiveFailures,
		Available:              s.available,
	}
}
