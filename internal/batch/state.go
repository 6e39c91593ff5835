package batch

import "sync"

// State is the run's mutable bookkeeping: attempted/processed counters
// and the output path currently being written. The driver mutates it
// sequentially; the mutex keeps reads from other goroutines consistent.
type State struct {
	mu            sync.Mutex
	attempted     int
	processed     int
	currentOutput string
}

func (s *State) fileAttempted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempted++
}

func (s *State) fileProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
}

func (s *State) setCurrentOutput(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOutput = path
}

func (s *State) clearCurrentOutput() {
	s.setCurrentOutput("")
}

// Counts returns the attempted and processed totals so far.
func (s *State) Counts() (attempted, processed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempted, s.processed
}

// CurrentOutput returns the output path of an in-flight encode, or ""
// when the last encode finished or was cleaned up. After an interrupt
// the marker survives so the caller can remove the truncated output.
func (s *State) CurrentOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentOutput
}
