// Package dashboard owns the in-memory working set of survey responses
// shared by the CLI views and the HTTP server.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/filter"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/normalize"
	"github.com/sells-group/nps-cli/internal/source"
)

// NoticeNotConnected is shown when no data source is configured.
const NoticeNotConnected = "Could not connect to database. Check Supabase configuration."

// Policy decides what happens to a local status edit when the remote
// write fails.
type Policy string

const (
	// PolicyOptimistic keeps the local edit.
	PolicyOptimistic Policy = "optimistic"
	// PolicyStrict reverts the local edit.
	PolicyStrict Policy = "strict"
)

// ParsePolicy maps a config value to a Policy. Unknown values fall back to
// PolicyOptimistic.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyStrict {
		return PolicyStrict
	}
	return PolicyOptimistic
}

var (
	// ErrInvalidStatus is reported for a status outside the ticket vocabulary.
	ErrInvalidStatus = eris.New("dashboard: invalid ticket status")
	// ErrUnknownResponse is reported when no response has the requested id.
	ErrUnknownResponse = eris.New("dashboard: unknown response")
)

// UpdateResult describes the outcome of a status change. Current is the
// status held locally after the policy was applied.
type UpdateResult struct {
	ID        string             `json:"id"`
	Previous  model.TicketStatus `json:"previous"`
	Current   model.TicketStatus `json:"current"`
	Persisted bool               `json:"persisted"`
	Err       error              `json:"-"`
}

// OK reports whether the change was applied and persisted.
func (r UpdateResult) OK() bool { return r.Err == nil }

// Option configures a State.
type Option func(*State)

// WithPolicy sets the reconciliation policy for failed status writes.
func WithPolicy(p Policy) Option {
	return func(s *State) {
		s.policy = p
	}
}

// State holds the normalized responses loaded from a source.
type State struct {
	mu        sync.RWMutex
	src       source.Source
	policy    Policy
	responses []model.Response
	notice    string
	loadErr   error
	loadedAt  time.Time
}

// Load fetches and normalizes responses from src. A nil src yields an empty
// state carrying NoticeNotConnected; a fetch failure is logged and yields an
// empty state. Load never fails.
func Load(ctx context.Context, src source.Source, now time.Time, opts ...Option) *State {
	s := &State{src: src, policy: PolicyOptimistic}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload(ctx, now)
	return s
}

// Reload replaces the working set with a fresh fetch.
func (s *State) Reload(ctx context.Context, now time.Time) {
	var (
		responses []model.Response
		notice    string
		loadErr   error
	)

	if s.src == nil {
		notice = NoticeNotConnected
		loadErr = source.ErrNotConfigured
	} else {
		subs, err := s.src.Fetch(ctx)
		if err != nil {
			zap.L().Error("dashboard: fetch submissions", zap.Error(err))
			loadErr = err
		} else {
			responses = normalize.All(subs)
			zap.L().Debug("dashboard: loaded responses",
				zap.Int("submissions", len(subs)),
				zap.Int("scored", len(responses)),
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = responses
	s.notice = notice
	s.loadErr = loadErr
	s.loadedAt = now
}

// Notice returns the user-facing load message, if any.
func (s *State) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// LoadErr returns the error from the most recent load, if any.
func (s *State) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// LoadedAt returns the instant passed to the most recent load.
func (s *State) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Len returns the number of responses held.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}

// Responses returns a copy of the working set in load order.
func (s *State) Responses() []model.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Response, len(s.responses))
	copy(out, s.responses)
	return out
}

// Find looks up a response by id.
func (s *State) Find(id string) (model.Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.responses[i], true
	}
	return model.Response{}, false
}

// Filter returns the responses matching c, in load order. The result is
// always a copy of the working set.
func (s *State) Filter(c filter.Criteria) []model.Response {
	if c.IsZero() {
		return s.Responses()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Apply(s.responses, c)
}

// SetStatus changes a response's ticket status locally and writes it to the
// source. When the write fails the policy decides whether the local edit
// stands; either way the failure is reported in the result.
func (s *State) SetStatus(ctx context.Context, id string, status model.TicketStatus) UpdateResult {
	res := UpdateResult{ID: id}
	if !status.Valid() {
		res.Err = eris.Wrapf(ErrInvalidStatus, "dashboard: set status %q", status)
		return res
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		res.Err = eris.Wrapf(ErrUnknownResponse, "dashboard: set status %s", id)
		return res
	}
	res.Previous = s.responses[i].TicketStatus
	s.responses[i].TicketStatus = status
	s.mu.Unlock()
	res.Current = status

	var err error
	if s.src == nil {
		err = source.ErrNotConfigured
	} else {
		err = s.src.UpdateStatus(ctx, id, status)
	}
	if err == nil {
		res.Persisted = true
		return res
	}

	res.Err = err
	zap.L().Warn("dashboard: status update not persisted",
		zap.String("id", id),
		zap.String("status", string(status)),
		zap.String("policy", string(s.policy)),
		zap.Error(err),
	)

	if s.policy == PolicyStrict {
		s.mu.Lock()
		// Leave newer edits alone.
		if i := s.indexOf(id); i >= 0 && s.responses[i].TicketStatus == status {
			s.responses[i].TicketStatus = res.Previous
			res.Current = res.Previous
		}
		s.mu.Unlock()
	}
	return res
}

func (s *State) indexOf(id string) int {
	for i := range s.responses {
		if s.responses[i].ID == id {
			return i
		}
	}
	return -1
}
