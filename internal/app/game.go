package app

import (
	"sync"
	"time"

	"rich-trivia-service/internal/domain"
)

// Scheduler defers fn by d and returns a cancel func. The production
// implementation is time.AfterFunc; tests trigger the callback by hand.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func afterFuncScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Reveal tells the caller how to render the answer while the commit is
// pending: which answer was picked and whether it was correct.
type Reveal struct {
	AnswerID string `json:"answerId"`
	Correct  bool   `json:"correct"`
}

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	Index        int
	Total        int
	Question     domain.Question
	CorrectCount int
	MoneyWon     int
	Finished     bool
	Outcome      domain.Outcome
}

// Summary describes a finished session for stats recording.
type Summary struct {
	Outcome      domain.Outcome
	CorrectCount int
	MoneyWon     int
}

// Game is a single-player trivia session. A submitted answer is revealed to
// the caller immediately but the state transition commits only after the
// reveal delay; further submissions for the same question are rejected while
// the commit is pending. Terminal states are absorbing.
type Game struct {
	mu            sync.Mutex
	sequence      []domain.Question
	index         int
	correctCount  int
	moneyWon      int
	outcome       domain.Outcome
	finished      bool
	pending       bool
	cancelPending func()

	revealDelay time.Duration
	schedule    Scheduler
	onCommit    func(Snapshot)
}

// NewGame starts a session over a non-empty play sequence. onCommit is
// invoked after every committed transition, the terminal one included; it
// may be nil.
func NewGame(sequence []domain.Question, revealDelay time.Duration, onCommit func(Snapshot)) (*Game, error) {
	return NewGameWithScheduler(sequence, revealDelay, onCommit, afterFuncScheduler)
}

// NewGameWithScheduler is for tests that need deterministic reveal timing.
func NewGameWithScheduler(sequence []domain.Question, revealDelay time.Duration, onCommit func(Snapshot), schedule Scheduler) (*Game, error) {
	if len(sequence) == 0 {
		return nil, domain.ErrCatalogEmpty
	}
	return &Game{
		sequence:    sequence,
		outcome:     domain.OutcomeNone,
		revealDelay: revealDelay,
		schedule:    schedule,
		onCommit:    onCommit,
	}, nil
}

// Submit records an answer for the current question. The returned Reveal is
// for display during the delay; the index/score change commits afterwards.
func (g *Game) Submit(answerID string) (Reveal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finished {
		return Reveal{}, domain.ErrGameFinished
	}
	if g.pending {
		return Reveal{}, domain.ErrAnswerPending
	}

	answer, ok := g.sequence[g.index].Answer(answerID)
	if !ok {
		return Reveal{}, domain.ErrAnswerNotFound
	}

	g.pending = true
	g.cancelPending = g.schedule(g.revealDelay, func() { g.commit(answer.Correct) })
	return Reveal{AnswerID: answer.ID, Correct: answer.Correct}, nil
}

func (g *Game) commit(correct bool) {
	g.mu.Lock()
	if !g.pending || g.finished {
		g.mu.Unlock()
		return
	}
	g.pending = false
	g.cancelPending = nil

	if correct {
		g.correctCount++
		g.moneyWon = g.sequence[g.index].Money
		if g.index == len(g.sequence)-1 {
			g.finished = true
			g.outcome = domain.OutcomeWon
		} else {
			g.index++
		}
	} else {
		// Payout falls back to the last question answered correctly.
		if g.index > 0 {
			g.moneyWon = g.sequence[g.index-1].Money
		} else {
			g.moneyWon = 0
		}
		g.finished = true
		g.outcome = domain.OutcomeLost
	}

	onCommit := g.onCommit
	snap := g.snapshotLocked()
	g.mu.Unlock()

	if onCommit != nil {
		onCommit(snap)
	}
}

// Stop abandons the session, cancelling a pending reveal. An abandoned
// session never reaches a terminal outcome and fires no further commits.
func (g *Game) Stop() {
	g.mu.Lock()
	cancel := g.cancelPending
	g.cancelPending = nil
	g.pending = false
	g.onCommit = nil
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the current state for rendering.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	return Snapshot{
		Index:        g.index,
		Total:        len(g.sequence),
		Question:     g.sequence[g.index],
		CorrectCount: g.correctCount,
		MoneyWon:     g.moneyWon,
		Finished:     g.finished,
		Outcome:      g.outcome,
	}
}

// Sequence returns the immutable play sequence of the session.
func (g *Game) Sequence() []domain.Question {
	return g.sequence
}

// Summary condenses a terminal snapshot for stats recording.
func (s Snapshot) Summary() Summary {
	return Summary{
		Outcome:      s.Outcome,
		CorrectCount: s.CorrectCount,
		MoneyWon:     s.MoneyWon,
	}
}
