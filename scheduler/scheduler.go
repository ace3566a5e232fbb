package scheduler

import (
	"sync"
	"time"

	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/model"
)

const (
	DefaultRefreshInterval  = 20 * time.Second
	DefaultRotationInterval = 10 * time.Second
	DefaultDisplayCap       = 3
	DefaultTickEvery        = time.Second
)

// DepartureSourceInterface supplies upcoming departures, soonest first.
// It may be slow and it may fail; the scheduler absorbs both.
type DepartureSourceInterface interface {
	Departures() ([]model.Departure, error)
}

// RenderSinkInterface shows one departure. Infallible from the scheduler's
// point of view; whatever the sink does with I/O errors is its own concern.
type RenderSinkInterface interface {
	Render(departure model.Departure)
}

// BoardListenerInterface is notified with a copy of the board after every
// successful refresh
type BoardListenerInterface interface {
	BoardUpdated(departures []model.Departure)
}

// Scheduler reconciles the slow fetch cadence with the fast rotation
// cadence over one shared board. A fetch failure never disturbs rotation:
// the board freezes on the last known-good data and the failing source is
// retried on the next refresh interval.
//
// The tick loop is the only writer. The mutex exists because Snapshot is
// served to other goroutines (the diagnostics HTTP handlers); board
// replacement is atomic from every reader's point of view.
type Scheduler struct {
	Logger *dlog.Logger

	source    DepartureSourceInterface
	sink      RenderSinkInterface
	listeners []BoardListenerInterface

	refreshInterval  time.Duration
	rotationInterval time.Duration
	displayCap       int
	tickEvery        time.Duration

	mux           sync.Mutex
	board         []model.Departure
	rotationIndex int
	freshBoard    bool
	lastFetch     time.Time
	lastRotation  time.Time
	fetchFailures int
}

// Snapshot is a point-in-time copy of the scheduler state
type Snapshot struct {
	Departures    []model.Departure `json:"departures"`
	RotationIndex int               `json:"rotationIndex"`
	LastFetch     time.Time         `json:"lastFetch"`
	LastRotation  time.Time         `json:"lastRotation"`
	FetchFailures int               `json:"fetchFailures"`
}

type SchedulerOption struct {
	f func(*Scheduler)
}

func SchedulerRefreshInterval(d time.Duration) SchedulerOption {
	return SchedulerOption{func(s *Scheduler) {
		s.refreshInterval = d
	}}
}

func SchedulerRotationInterval(d time.Duration) SchedulerOption {
	return SchedulerOption{func(s *Scheduler) {
		s.rotationInterval = d
	}}
}

func SchedulerDisplayCap(n int) SchedulerOption {
	return SchedulerOption{func(s *Scheduler) {
		s.displayCap = n
	}}
}

func SchedulerTickEvery(d time.Duration) SchedulerOption {
	return SchedulerOption{func(s *Scheduler) {
		s.tickEvery = d
	}}
}

func SchedulerBoardListener(l BoardListenerInterface) SchedulerOption {
	return SchedulerOption{func(s *Scheduler) {
		s.listeners = append(s.listeners, l)
	}}
}

func NewScheduler(logger *dlog.Logger, source DepartureSourceInterface, sink RenderSinkInterface, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		Logger:           logger,
		source:           source,
		sink:             sink,
		refreshInterval:  DefaultRefreshInterval,
		rotationInterval: DefaultRotationInterval,
		displayCap:       DefaultDisplayCap,
		tickEvery:        DefaultTickEvery,
	}

	for _, option := range options {
		option.f(s)
	}

	return s
}

// Tick services both timers once. Refresh first, so that a tick landing on
// both deadlines rotates the board the refresh just produced.
func (s *Scheduler) Tick(now time.Time) {
	if s.refreshDue(now) {
		s.refresh(now)
	}
	s.rotate(now)
}

// Run drives Tick on a short fixed cadence until done is closed. The first
// tick happens immediately, so the display fills as soon as the source
// answers. An in-flight fetch at shutdown is abandoned with the process.
func (s *Scheduler) Run(done <-chan struct{}) {
	s.Logger.Debug("Run")

	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	s.Tick(time.Now())

	for {
		select {
		case <-done:
			s.Logger.Debug("Run stopped")
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mux.Lock()
	defer s.mux.Unlock()

	departures := make([]model.Departure, len(s.board))
	copy(departures, s.board)

	return Snapshot{
		Departures:    departures,
		RotationIndex: s.rotationIndex,
		LastFetch:     s.lastFetch,
		LastRotation:  s.lastRotation,
		FetchFailures: s.fetchFailures,
	}
}

func (s *Scheduler) refreshDue(now time.Time) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.lastFetch.IsZero() || now.Sub(s.lastFetch) >= s.refreshInterval
}

func (s *Scheduler) refresh(now time.Time) {
	s.Logger.Debug("refresh")

	departures, err := s.source.Departures()

	if err != nil {
		s.mux.Lock()
		s.lastFetch = now
		s.fetchFailures++
		failures := s.fetchFailures
		cached := len(s.board)
		s.mux.Unlock()

		s.Logger.Printf("fetch failed (%d consecutive failure(s)); keeping %d cached departure(s): %s", failures, cached, err.Error())
		return
	}

	if len(departures) > s.displayCap {
		departures = departures[:s.displayCap]
	}

	s.mux.Lock()
	s.lastFetch = now
	s.fetchFailures = 0
	if model.DeparturesEqual(s.board, departures) {
		// An identical refetch keeps the rotation index and the fresh
		// flag, so the cycle continues in order instead of restarting
		s.board = departures
	} else {
		// The next rotation shows the head of the fresh board
		s.board = departures
		s.rotationIndex = 0
		s.freshBoard = true
	}
	updated := make([]model.Departure, len(s.board))
	copy(updated, s.board)
	s.mux.Unlock()

	s.Logger.Debugf("fetched %d departure(s)", len(updated))

	// Notify outside the lock; listeners may be slow
	for _, listener := range s.listeners {
		listener.BoardUpdated(updated)
	}
}

func (s *Scheduler) rotate(now time.Time) {
	s.mux.Lock()

	if len(s.board) == 0 {
		// Nothing to show; the sink keeps whatever it last drew
		s.mux.Unlock()
		return
	}

	if !s.lastRotation.IsZero() && now.Sub(s.lastRotation) < s.rotationInterval {
		s.mux.Unlock()
		return
	}

	if s.freshBoard {
		s.freshBoard = false
	} else {
		s.rotationIndex = (s.rotationIndex + 1) % len(s.board)
	}
	departure := s.board[s.rotationIndex]
	s.lastRotation = now

	s.mux.Unlock()

	s.Logger.Debugf("showing %s", departure.Format())
	s.sink.Render(departure)
}
