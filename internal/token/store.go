package token

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Store is the registry of token definitions keyed by full path.
//
// A Store is owned by a single goroutine; it performs no locking.
type Store struct {
	logger hclog.Logger
	sep    string
	now    func() time.Time
	newID  func() string

	order  []string
	byID   map[string]*Token
	byPath map[string]string

	collections []*Collection
	selected    string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l hclog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("store")
		}
	}
}

// WithSeparator sets the initial path separator. Invalid values are ignored.
func WithSeparator(sep string) Option {
	return func(s *Store) {
		if ValidSeparator(sep) {
			s.sep = sep
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id allocation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithCollections replaces the default collections.
func WithCollections(cols []Collection) Option {
	return func(s *Store) {
		s.collections = nil
		for _, c := range cols {
			c.Modes = slices.Clone(c.Modes)
			s.collections = append(s.collections, &c)
		}
	}
}

// NewStore creates an empty store with the default collections.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: hclog.NewNullLogger(),
		sep:    SeparatorSlash,
		now:    time.Now,
		newID:  NewID,
		byID:   make(map[string]*Token),
		byPath: make(map[string]string),
	}
	WithCollections(DefaultCollections())(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Separator returns the separator used for newly computed paths.
func (s *Store) Separator() string {
	return s.sep
}

// SetSeparator changes the separator. Existing full paths are not rewritten;
// only paths computed afterwards use the new separator.
func (s *Store) SetSeparator(sep string) error {
	if err := CheckSeparator(sep); err != nil {
		return &ValidationError{Field: "separator", Message: err.Error()}
	}
	s.sep = sep
	return nil
}

// Len returns the number of tokens.
func (s *Store) Len() int {
	return len(s.order)
}

// Get returns the token with the given id.
func (s *Store) Get(id string) (Token, bool) {
	t, ok := s.byID[id]
	if !ok {
		return Token{}, false
	}
	return t.clone(), true
}

// GetByPath returns the token with the given full path.
func (s *Store) GetByPath(fullPath string) (Token, bool) {
	id, ok := s.byPath[fullPath]
	if !ok {
		return Token{}, false
	}
	return s.byID[id].clone(), true
}

// All returns every token in insertion order.
func (s *Store) All() []Token {
	out := make([]Token, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].clone())
	}
	return out
}

// Create adds a token. When a token with the same full path already exists the
// call becomes an update of that token (see MergeOnCollision) and the existing
// token, with its original id and creation time, is returned.
func (s *Store) Create(d Draft) (Token, error) {
	d, err := s.normaliseDraft(d)
	if err != nil {
		return Token{}, err
	}

	now := s.now().UnixMilli()

	if id, ok := s.byPath[d.FullPath]; ok {
		existing := s.byID[id]
		MergeOnCollision(existing, d, now)
		s.logger.Debug("upserted token", "path", d.FullPath, "id", id)
		return existing.clone(), nil
	}

	t := &Token{
		ID:          s.newID(),
		Name:        d.Name,
		Path:        slices.Clone(d.Path),
		FullPath:    d.FullPath,
		Type:        d.Type,
		Value:       d.Value,
		Semantic:    d.Semantic,
		References:  d.References,
		Enabled:     !d.Disabled,
		Collection:  d.Collection,
		Tags:        slices.Clone(d.Tags),
		Description: d.Description,
		HostID:      d.HostID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(d.ModeValues) > 0 {
		t.ModeValues = cloneModeValues(d.ModeValues)
	}

	s.byID[t.ID] = t
	s.byPath[t.FullPath] = t.ID
	s.order = append(s.order, t.ID)
	s.ensureCollection(t.Collection)
	s.recount()

	s.logger.Trace("created token", "path", t.FullPath, "id", t.ID)
	return t.clone(), nil
}

// MergeOnCollision applies a create request to the token already holding its
// full path. The value is always replaced; description, tags, references and
// per-mode values only when the draft supplies them. Identity and creation
// time are preserved.
func MergeOnCollision(existing *Token, d Draft, now int64) {
	existing.Type = d.Value.Kind
	existing.Value = d.Value
	if d.Description != "" {
		existing.Description = d.Description
	}
	if d.Tags != nil {
		existing.Tags = slices.Clone(d.Tags)
	}
	if d.References != nil {
		r := *d.References
		existing.References = &r
	}
	if d.ModeValues != nil {
		existing.ModeValues = cloneModeValues(d.ModeValues)
	}
	existing.UpdatedAt = max(now, existing.CreatedAt)
}

// normaliseDraft fills computed fields and validates the draft.
func (s *Store) normaliseDraft(d Draft) (Draft, error) {
	if d.Name == "" && d.FullPath != "" {
		d.Path, d.Name = ParseFullPath(d.FullPath, s.sep)
	}
	if strings.TrimSpace(d.Name) == "" {
		return d, &ValidationError{Field: "name", Message: "name is required"}
	}
	if d.FullPath == "" {
		d.FullPath = BuildFullPath(d.Path, d.Name, s.sep)
	}
	if d.Type == "" {
		d.Type = d.Value.Kind
	}
	if !d.Type.Valid() {
		return d, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown type %q", d.Type)}
	}
	if err := d.Value.validate(d.Type); err != nil {
		return d, err
	}
	for mode, v := range d.ModeValues {
		if err := v.validate(d.Type); err != nil {
			return d, &ValidationError{Field: "modeValues." + mode, Message: err.Error()}
		}
	}
	if d.Collection == "" {
		d.Collection = CollectionPrimitives
	}
	return d, nil
}

// Update merges patch into the token with the given id. Changing the name or
// path recomputes the full path with the current separator.
func (s *Store) Update(id string, p Patch) (Token, error) {
	cur, ok := s.byID[id]
	if !ok {
		return Token{}, fmt.Errorf("token %s: %w", id, ErrNotFound)
	}

	next := cur.clone()
	reroute := false
	if p.Name != nil && *p.Name != next.Name {
		if strings.TrimSpace(*p.Name) == "" {
			return Token{}, &ValidationError{Field: "name", Message: "name is required"}
		}
		next.Name = *p.Name
		reroute = true
	}
	if p.Path != nil && !slices.Equal(p.Path, next.Path) {
		next.Path = slices.Clone(p.Path)
		reroute = true
	}
	if reroute {
		next.FullPath = BuildFullPath(next.Path, next.Name, s.sep)
		if other, taken := s.byPath[next.FullPath]; taken && other != id {
			return Token{}, &ValidationError{Field: "path", Message: fmt.Sprintf("%q is already used by another token", next.FullPath)}
		}
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Value != nil {
		next.Value = *p.Value
	}
	if err := next.Value.validate(next.Type); err != nil {
		return Token{}, err
	}
	if p.ModeValues != nil {
		for mode, v := range p.ModeValues {
			if err := v.validate(next.Type); err != nil {
				return Token{}, &ValidationError{Field: "modeValues." + mode, Message: err.Error()}
			}
		}
		next.ModeValues = cloneModeValues(p.ModeValues)
	}
	if p.Semantic != nil {
		sem := *p.Semantic
		next.Semantic = &sem
	}
	if p.References != nil {
		r := *p.References
		next.References = &r
	}
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
	}
	if p.Collection != nil && *p.Collection != "" {
		next.Collection = *p.Collection
	}
	if p.Tags != nil {
		next.Tags = slices.Clone(p.Tags)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.HostID != nil {
		next.HostID = *p.HostID
	}
	next.UpdatedAt = max(s.now().UnixMilli(), next.CreatedAt)

	if next.FullPath != cur.FullPath {
		delete(s.byPath, cur.FullPath)
		s.byPath[next.FullPath] = id
	}
	moved := next.Collection != cur.Collection
	*cur = next
	if moved {
		s.ensureCollection(cur.Collection)
		s.recount()
	}
	return cur.clone(), nil
}

// Delete removes a token by id, clearing the selection if it pointed at it.
func (s *Store) Delete(id string) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.byPath, t.FullPath)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	if s.selected == id {
		s.selected = ""
	}
	s.recount()
	return true
}

// Duplicate copies a token under "<name>-copy" by routing through Create, so
// an existing copy is updated rather than duplicated again.
func (s *Store) Duplicate(id string) (Token, error) {
	t, ok := s.byID[id]
	if !ok {
		return Token{}, fmt.Errorf("token %s: %w", id, ErrNotFound)
	}
	d := DraftFrom(*t)
	d.Name += "-copy"
	d.HostID = ""
	return s.Create(d)
}

// Search returns tokens whose name, full path, description or tags contain
// query, ignoring case. A blank query returns every token.
func (s *Store) Search(query string) []Token {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Token, 0)
	for _, id := range s.order {
		t := s.byID[id]
		if matches(t, q) {
			out = append(out, t.clone())
		}
	}
	return out
}

func matches(t *Token, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.FullPath), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	return slices.ContainsFunc(t.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

// Filter narrows tokens by collection, then enabled state, then search query.
// Zero-valued fields are skipped.
type Filter struct {
	Collection string
	Enabled    *bool
	Query      string
}

// Filter applies f in order: collection, enabled, query.
func (s *Store) Filter(f Filter) []Token {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Token, 0)
	for _, id := range s.order {
		t := s.byID[id]
		if f.Collection != "" && t.Collection != f.Collection {
			continue
		}
		if f.Enabled != nil && t.Enabled != *f.Enabled {
			continue
		}
		if !matches(t, q) {
			continue
		}
		out = append(out, t.clone())
	}
	return out
}

// BulkSetEnabled toggles each id independently. Missing ids are skipped.
// It returns the number of tokens changed.
func (s *Store) BulkSetEnabled(ids []string, enabled bool) int {
	n := 0
	for _, id := range ids {
		if _, err := s.Update(id, Patch{Enabled: &enabled}); err == nil {
			n++
		}
	}
	return n
}

// BulkDelete deletes each id independently. Missing ids are skipped.
func (s *Store) BulkDelete(ids []string) int {
	n := 0
	for _, id := range ids {
		if s.Delete(id) {
			n++
		}
	}
	return n
}

// Clear removes every token.
func (s *Store) Clear() {
	s.order = nil
	s.byID = make(map[string]*Token)
	s.byPath = make(map[string]string)
	s.selected = ""
	s.recount()
}

// ClearCollection removes every token in a collection and returns how many were removed.
func (s *Store) ClearCollection(name string) int {
	var ids []string
	for _, id := range s.order {
		if s.byID[id].Collection == name {
			ids = append(ids, id)
		}
	}
	return s.BulkDelete(ids)
}

// Select marks a token as selected. It returns false for unknown ids.
func (s *Store) Select(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	s.selected = id
	return true
}

// SelectedID returns the selected token id, or "" when nothing is selected.
func (s *Store) SelectedID() string {
	return s.selected
}

// Selected returns the selected token.
func (s *Store) Selected() (Token, bool) {
	return s.Get(s.selected)
}

// Collections returns every collection with current counts.
func (s *Store) Collections() []Collection {
	out := make([]Collection, len(s.collections))
	for i, c := range s.collections {
		out[i] = *c
		out[i].Modes = slices.Clone(c.Modes)
	}
	return out
}

// Collection returns the named collection.
func (s *Store) Collection(name string) (Collection, bool) {
	for _, c := range s.collections {
		if c.Name == name {
			cp := *c
			cp.Modes = slices.Clone(c.Modes)
			return cp, true
		}
	}
	return Collection{}, false
}

// AddCollection registers a new collection.
func (s *Store) AddCollection(c Collection) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "collection", Message: "name is required"}
	}
	if _, ok := s.Collection(c.Name); ok {
		return &ValidationError{Field: "collection", Message: fmt.Sprintf("collection %q already exists", c.Name)}
	}
	if len(c.Modes) == 0 {
		c.Modes = []string{ModeValue}
	}
	c.Modes = slices.Clone(c.Modes)
	s.collections = append(s.collections, &c)
	s.recount()
	return nil
}

// SetModes replaces a collection's mode list.
func (s *Store) SetModes(name string, modes []string) error {
	for _, c := range s.collections {
		if c.Name == name {
			if len(modes) == 0 {
				return &ValidationError{Field: "modes", Message: "at least one mode is required"}
			}
			c.Modes = slices.Clone(modes)
			return nil
		}
	}
	return fmt.Errorf("collection %s: %w", name, ErrNotFound)
}

func (s *Store) ensureCollection(name string) {
	for _, c := range s.collections {
		if c.Name == name {
			return
		}
	}
	s.logger.Debug("registering collection on first use", "collection", name)
	s.collections = append(s.collections, &Collection{Name: name, Modes: []string{ModeValue}})
}

// recount refreshes the cached TokenCount of every collection.
func (s *Store) recount() {
	counts := make(map[string]int, len(s.collections))
	for _, id := range s.order {
		counts[s.byID[id].Collection]++
	}
	for _, c := range s.collections {
		c.TokenCount = counts[c.Name]
	}
}

func cloneModeValues(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
