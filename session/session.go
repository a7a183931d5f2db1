// Package session tracks one user's searches: a search always passes
// through Idle before Loading, and only the latest search may publish
// a result or an error.
package session

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/giygas/druginfo/backend"
	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/formatter"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/metrics"
)

// Phase is the display state of a session
type Phase int

const (
	Idle Phase = iota
	Loading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Ticket identifies one search. Responses must present the ticket of the
// search they answer.
type Ticket struct {
	ID    uuid.UUID
	Query entities.Query
}

// State is a snapshot of the session
type State struct {
	Phase    Phase
	SearchID uuid.UUID
	Query    entities.Query
	Result   *entities.DrugInfoResult
	Error    string
}

// Observer is called on every phase change, outside the session lock.
// Calls are serialized and arrive in transition order. An observer may read
// the session but must not call Begin, Complete or Fail.
type Observer func(from, to Phase)

// Session is safe for concurrent use
type Session struct {
	mu    sync.Mutex
	state State
	stale int

	// notifyMu is taken while mu is still held, so observers see
	// transitions in the order they were applied
	notifyMu sync.Mutex
	observer Observer
}

// New returns an idle session. observer may be nil.
func New(observer Observer) *Session {
	return &Session{observer: observer}
}

// Begin starts a new search: the previous result and error are cleared
// and the session moves to Loading under a fresh search ID.
func (s *Session) Begin(q entities.Query) Ticket {
	t := Ticket{ID: uuid.New(), Query: q}

	s.mu.Lock()
	from := s.state.Phase
	// Reset to Idle and enter Loading in one step so no reader sees a
	// cleared session without its new search ID
	s.state = State{Phase: Loading, SearchID: t.ID, Query: q}
	s.notifyMu.Lock()
	s.mu.Unlock()

	if from != Idle {
		s.notify(from, Idle)
	}
	s.notify(Idle, Loading)
	s.notifyMu.Unlock()

	logging.Debug("Search started", "search_id", t.ID.String(), "query", q.Label(), "image", q.IsImage())
	return t
}

// Complete publishes result for t. It returns false and drops the result
// when t is not the current loading search.
func (s *Session) Complete(t Ticket, result *entities.DrugInfoResult) bool {
	return s.finish(t, Succeeded, func(st *State) {
		st.Result = result
	})
}

// Fail publishes message for t under the same rules as Complete
func (s *Session) Fail(t Ticket, message string) bool {
	return s.finish(t, Failed, func(st *State) {
		st.Error = message
	})
}

func (s *Session) finish(t Ticket, to Phase, apply func(*State)) bool {
	s.mu.Lock()
	if s.state.Phase != Loading || s.state.SearchID != t.ID {
		s.stale++
		current := s.state.SearchID
		s.mu.Unlock()

		metrics.StaleResponsesDiscardedTotal.Inc()
		logging.Debug("Discarded stale response", "search_id", t.ID.String(), "current_search_id", current.String())
		return false
	}
	apply(&s.state)
	s.state.Phase = to
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(Loading, to)
	s.notifyMu.Unlock()
	return true
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Blocks formats the current result. It is empty unless the last search succeeded.
func (s *Session) Blocks() []formatter.Block {
	st := s.Snapshot()
	if st.Phase != Succeeded {
		return []formatter.Block{}
	}
	return formatter.Format(st.Result)
}

// Document returns the formatted current result
func (s *Session) Document() formatter.Document {
	st := s.Snapshot()
	if st.Phase != Succeeded {
		return formatter.NewDocument(nil)
	}
	return formatter.NewDocument(st.Result)
}

// StaleCount returns how many responses were discarded
func (s *Session) StaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

func (s *Session) notify(from, to Phase) {
	if s.observer != nil {
		s.observer(from, to)
	}
}

// Search runs q against b in the calling goroutine and returns the state
// it produced, or the state of a newer search if this one was superseded.
func (s *Session) Search(ctx context.Context, b interfaces.Backend, q entities.Query) State {
	t := s.Begin(q)
	s.Resolve(t, Fetch(ctx, b, q))
	return s.Snapshot()
}

// Outcome is the answer to one backend call
type Outcome struct {
	Result *entities.DrugInfoResult
	Err    error
}

// Fetch calls the backend for q. An image query is sent as an upload and
// its text is ignored.
func Fetch(ctx context.Context, b interfaces.Backend, q entities.Query) Outcome {
	var (
		result *entities.DrugInfoResult
		err    error
	)
	if q.IsImage() {
		result, err = b.IdentifyMedicine(ctx, q.Image.Filename, bytes.NewReader(q.Image.Data))
	} else {
		result, err = b.LookupDrug(ctx, q.DrugName)
	}
	return Outcome{Result: result, Err: err}
}

// Resolve applies o to ticket t, mapping errors to their user message
func (s *Session) Resolve(t Ticket, o Outcome) bool {
	if o.Err != nil {
		return s.Fail(t, backend.UserMessage(o.Err))
	}
	return s.Complete(t, o.Result)
}
