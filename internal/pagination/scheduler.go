package pagination

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"pagedoc/internal/domain"
)

// DefaultDelay batches bursts of edits into a single relayout.
const DefaultDelay = 20 * time.Millisecond

// Input is what a relayout needs: the block list and packing parameters.
// It is read at run time so the latest state wins.
type Input func() ([]domain.Block, Params)

// Scheduler recomputes pages a short delay after the last change request.
type Scheduler struct {
	mu       sync.Mutex
	input    Input
	measurer Measurer
	publish  func([]domain.Page)
	debounce func(func())
}

// NewScheduler creates a scheduler. A zero delay relayouts synchronously.
func NewScheduler(delay time.Duration, input Input, m Measurer, publish func([]domain.Page)) *Scheduler {
	s := &Scheduler{input: input, measurer: m, publish: publish}
	if delay > 0 {
		s.debounce = debounce.New(delay)
	}
	return s
}

// Request schedules a relayout.
func (s *Scheduler) Request() {
	if s.debounce == nil {
		s.Run()
		return
	}
	s.debounce(s.Run)
}

// Run relayouts immediately.
func (s *Scheduler) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks, params := s.input()
	pages := Paginate(blocks, params, s.measurer)
	s.publish(pages)
}
