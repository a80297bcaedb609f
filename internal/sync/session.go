package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// DefaultTimeout bounds every host request.
const DefaultTimeout = 30 * time.Second

// State is where a session is in the sync flow.
type State string

const (
	StateIdle               State = "idle"
	StateLoadingCollections State = "loading-collections"
	StateCollectionSelected State = "collection-selected"
	StateLoadingVariables   State = "loading-variables"
	StateDiffReady          State = "diff-ready"
	StateApplying           State = "apply-in-progress"
	StateError              State = "error"
)

var (
	// ErrBusy is returned when a request is made while another is in flight.
	ErrBusy = errors.New("a host request is already in flight")

	// ErrStaleResponse is returned for responses that do not answer the
	// request in flight. They are discarded without changing state.
	ErrStaleResponse = errors.New("stale response")

	// ErrTimeout is recorded when the host does not answer in time.
	ErrTimeout = errors.New("host did not respond in time")

	// ErrUnexpectedResponse is recorded when the host answers with the wrong type.
	ErrUnexpectedResponse = errors.New("unexpected response")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrNoSelection       = errors.New("no collection selected")
	ErrNoDiff            = errors.New("no diff ready to apply")
)

// LocalSource supplies the local variables and modes of a collection.
type LocalSource func(collection string) ([]LocalVariable, []string)

// SessionConfig configures a Session. Zero values get defaults.
type SessionConfig struct {
	Local          LocalSource
	IncludeDeletes bool
	Timeout        time.Duration
	NewID          func() string
	Now            func() time.Time
	Logger         hclog.Logger
}

type pending struct {
	id           string
	kind         plugin.MessageType
	collectionID string
	deadline     time.Time
}

// Session is the client side of the sync protocol. It builds request
// messages, matches responses to them by request id, and keeps the loaded
// collections, the selected collection and the current diff. At most one
// request is in flight. Session does no I/O and is not safe for concurrent
// use.
type Session struct {
	cfg    SessionConfig
	logger hclog.Logger

	state   State
	pending *pending
	err     error

	collections []plugin.Collection
	selected    *plugin.Collection
	target      string
	diff        *SyncDiff
	result      *plugin.ApplyResult
}

// NewSession returns an idle session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Local == nil {
		cfg.Local = func(string) ([]LocalVariable, []string) { return nil, nil }
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{cfg: cfg, logger: logger.Named("sync"), state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Err returns the error that moved the session into StateError.
func (s *Session) Err() error { return s.err }

// PendingID returns the request id in flight, or "".
func (s *Session) PendingID() string {
	if s.pending == nil {
		return ""
	}
	return s.pending.id
}

// Collections returns the collections from the last load.
func (s *Session) Collections() []plugin.Collection { return s.collections }

// CollectionByName finds a loaded collection.
func (s *Session) CollectionByName(name string) (plugin.Collection, bool) {
	for _, c := range s.collections {
		if c.Name == name {
			return c, true
		}
	}
	return plugin.Collection{}, false
}

// Selected returns the selected host collection. It reports false when
// nothing is selected or the target does not exist on the host yet.
func (s *Session) Selected() (plugin.Collection, bool) {
	if s.selected == nil {
		return plugin.Collection{}, false
	}
	return *s.selected, true
}

// Target is the name of the collection being synced.
func (s *Session) Target() string { return s.target }

// Diff returns the diff computed for the target.
func (s *Session) Diff() (SyncDiff, bool) {
	if s.diff == nil {
		return SyncDiff{}, false
	}
	return *s.diff, true
}

// Result returns the outcome of the last apply.
func (s *Session) Result() (plugin.ApplyResult, bool) {
	if s.result == nil {
		return plugin.ApplyResult{}, false
	}
	return *s.result, true
}

// RequestCollections starts loading the host's collections. A previously
// targeted collection is selected again if the host has it.
func (s *Session) RequestCollections() (plugin.Message, error) {
	if s.pending != nil {
		return plugin.Message{}, ErrBusy
	}
	return s.begin(plugin.Message{Type: plugin.MsgGetCollections}, StateLoadingCollections), nil
}

// Select makes a loaded host collection the sync target.
func (s *Session) Select(collectionID string) error {
	if s.pending != nil {
		return ErrBusy
	}
	for i := range s.collections {
		if s.collections[i].ID == collectionID {
			c := s.collections[i]
			s.selected = &c
			s.target = c.Name
			s.diff = nil
			s.err = nil
			s.state = StateCollectionSelected
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCollection, collectionID)
}

// SelectNew targets a collection by name. If the host already has it the
// collection is selected; otherwise the diff is computed straight away
// against an empty host side and the apply will create it.
func (s *Session) SelectNew(name string) error {
	if c, ok := s.CollectionByName(name); ok {
		return s.Select(c.ID)
	}
	if s.pending != nil {
		return ErrBusy
	}
	s.selected = nil
	s.target = name
	s.err = nil
	s.buildDiff(nil)
	return nil
}

// RequestVariables starts loading the selected collection's variables.
func (s *Session) RequestVariables() (plugin.Message, error) {
	if s.pending != nil {
		return plugin.Message{}, ErrBusy
	}
	if s.selected == nil {
		return plugin.Message{}, ErrNoSelection
	}
	msg := plugin.Message{Type: plugin.MsgGetVariables, CollectionID: s.selected.ID}
	return s.begin(msg, StateLoadingVariables), nil
}

// SelectCollection selects a collection and requests its variables.
func (s *Session) SelectCollection(collectionID string) (plugin.Message, error) {
	if err := s.Select(collectionID); err != nil {
		return plugin.Message{}, err
	}
	return s.RequestVariables()
}

// RequestApply sends the actionable part of the current diff.
func (s *Session) RequestApply() (plugin.Message, error) {
	if s.pending != nil {
		return plugin.Message{}, ErrBusy
	}
	if s.state != StateDiffReady || s.diff == nil {
		return plugin.Message{}, ErrNoDiff
	}
	req := ApplyRequest(*s.diff)
	msg := plugin.Message{
		Type:           plugin.MsgApplyChanges,
		CollectionName: req.CollectionName,
		Changes:        req.Changes,
		ModesToAdd:     req.ModesToAdd,
	}
	return s.begin(msg, StateApplying), nil
}

func (s *Session) begin(msg plugin.Message, next State) plugin.Message {
	msg.RequestID = s.cfg.NewID()
	s.pending = &pending{
		id:           msg.RequestID,
		kind:         msg.Type,
		collectionID: msg.CollectionID,
		deadline:     s.cfg.Now().Add(s.cfg.Timeout),
	}
	s.state = next
	s.logger.Debug("request", "type", msg.Type, "request_id", msg.RequestID)
	return msg
}

// Handle applies a host response. Responses that do not answer the request
// in flight return ErrStaleResponse and leave the session untouched. A
// sync-error or a response of the wrong type moves the session to
// StateError and is returned.
func (s *Session) Handle(msg plugin.Message) error {
	p := s.pending
	if p == nil || msg.RequestID != p.id {
		s.logger.Debug("discarding stale response", "type", msg.Type, "request_id", msg.RequestID)
		return ErrStaleResponse
	}
	if msg.Type == plugin.MsgSyncError {
		err := &plugin.ResponseError{RequestID: msg.RequestID, Message: msg.Error}
		s.fail(err)
		return err
	}
	if want := responseType(p.kind); msg.Type != want {
		err := fmt.Errorf("%w: %s while waiting for %s", ErrUnexpectedResponse, msg.Type, want)
		s.fail(err)
		return err
	}
	if p.kind == plugin.MsgGetVariables && msg.CollectionID != "" && msg.CollectionID != p.collectionID {
		s.logger.Debug("discarding variables for another collection", "collection_id", msg.CollectionID)
		return ErrStaleResponse
	}
	s.pending = nil

	switch p.kind {
	case plugin.MsgGetCollections:
		s.collections = msg.Collections
		s.state = StateIdle
		s.selected = nil
		if s.target != "" {
			for i := range s.collections {
				if s.collections[i].Name == s.target {
					c := s.collections[i]
					s.selected = &c
					s.state = StateCollectionSelected
				}
			}
		}
		s.logger.Debug("collections loaded", "count", len(msg.Collections))

	case plugin.MsgGetVariables:
		s.buildDiff(msg.Variables)

	case plugin.MsgApplyChanges:
		res := plugin.ApplyResult{}
		if msg.ApplyResult != nil {
			res = *msg.ApplyResult
		}
		s.result = &res
		// A new collection or new modes make the loaded collections stale;
		// dropping them makes the next diff reload.
		if s.selected == nil || len(s.diff.ModesToAdd) > 0 {
			s.selected = nil
			s.collections = nil
		}
		s.diff = nil
		s.state = StateIdle
		if s.selected != nil {
			s.state = StateCollectionSelected
		}
		if len(res.Errors) > 0 {
			s.logger.Warn("apply finished with errors", "collection", s.target, "errors", len(res.Errors))
		}
		s.logger.Info("changes applied", "collection", s.target,
			"created", res.Created, "updated", res.Updated, "deleted", res.Deleted)
	}
	return nil
}

// Expire fails the request in flight if its deadline has passed.
func (s *Session) Expire(now time.Time) bool {
	if s.pending == nil || !now.After(s.pending.deadline) {
		return false
	}
	s.fail(fmt.Errorf("%w: %s", ErrTimeout, s.pending.kind))
	return true
}

// Abort fails the request in flight with err.
func (s *Session) Abort(err error) {
	s.fail(err)
}

// Reset clears any error and pending request, keeping loaded collections.
func (s *Session) Reset() {
	s.pending = nil
	s.err = nil
	s.diff = nil
	s.state = StateIdle
	if s.selected != nil {
		s.state = StateCollectionSelected
	}
}

func (s *Session) fail(err error) {
	s.logger.Error("sync request failed", "state", s.state, "error", err)
	s.pending = nil
	s.err = err
	s.state = StateError
}

// buildDiff diffs the local side of the target against vars. The host
// collection is the selected one, or none for a new collection.
func (s *Session) buildDiff(vars []plugin.Variable) {
	local, modes := s.cfg.Local(s.target)
	d := ComputeDiff(DiffInput{
		CollectionName: s.target,
		Local:          local,
		HostCollection: s.selected,
		HostVariables:  vars,
		LocalModes:     modes,
		IncludeDeletes: s.cfg.IncludeDeletes,
	})
	s.diff = &d
	s.state = StateDiffReady
	s.logger.Debug("diff ready", "collection", s.target,
		"add", d.Summary.Add, "update", d.Summary.Update, "delete", d.Summary.Delete, "unchanged", d.Summary.Unchanged)
}

func responseType(req plugin.MessageType) plugin.MessageType {
	switch req {
	case plugin.MsgGetCollections:
		return plugin.MsgCollectionsLoaded
	case plugin.MsgGetVariables:
		return plugin.MsgVariablesLoaded
	case plugin.MsgApplyChanges:
		return plugin.MsgApplied
	case plugin.MsgGetProject:
		return plugin.MsgProjectLoaded
	}
	return ""
}
