// Package memhost is an in-memory plugin.Host. It backs tests and the
// tokenkit-memhost binary.
package memhost

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// Version is reported in HostInfo.
const Version = "0.1.0"

// Host keeps collections, variables and text styles in memory.
// It is safe for concurrent use.
type Host struct {
	mu          sync.Mutex
	protocol    plugin.HostProtocol
	seq         int
	collections []*collection
	styles      []plugin.TextStyle

	// typography records every create-* request in arrival order.
	typography []TypographyCall
}

// TypographyCall is one recorded create-* request.
type TypographyCall struct {
	Kind    plugin.MessageType
	Payload plugin.TypographyPayload
}

type collection struct {
	plugin.Collection
	variables []*plugin.Variable
}

// New creates an empty host reporting the given protocol.
func New(protocol plugin.HostProtocol) *Host {
	return &Host{protocol: protocol}
}

// FromSnapshot creates a host holding a copy of snap.
func FromSnapshot(protocol plugin.HostProtocol, snap plugin.ProjectSnapshot) *Host {
	h := New(protocol)
	for _, c := range snap.Collections {
		col := &collection{Collection: c}
		col.Modes = slices.Clone(c.Modes)
		for _, v := range snap.CollectionVariables(c.ID) {
			col.variables = append(col.variables, cloneVariable(v))
		}
		col.VariableCount = len(col.variables)
		h.collections = append(h.collections, col)
	}
	h.styles = slices.Clone(snap.Styles)
	for _, c := range snap.Collections {
		h.observe(c.ID)
		for _, m := range c.Modes {
			h.observe(m.ID)
		}
	}
	for _, v := range snap.Variables {
		h.observe(v.ID)
	}
	return h
}

// observe advances seq past an id generated by nextID so loaded ids are
// never reissued.
func (h *Host) observe(id string) {
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return
	}
	if n, err := strconv.Atoi(id[i+1:]); err == nil && n > h.seq {
		h.seq = n
	}
}

// nextID returns a fresh id with the given prefix. Callers hold mu.
func (h *Host) nextID(prefix string) string {
	h.seq++
	return prefix + ":" + strconv.Itoa(h.seq)
}

// GetMetadata returns host metadata.
func (h *Host) GetMetadata() plugin.HostInfo {
	return plugin.HostInfo{
		Name:            "memhost",
		Version:         Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "In-memory variable store",
		HostProtocol:    string(h.protocol),
	}
}

// AddCollection creates a managed collection with the given modes and
// returns it.
func (h *Host) AddCollection(name string, modes ...string) plugin.Collection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addCollection(name, modes).snapshot()
}

func (h *Host) addCollection(name string, modes []string) *collection {
	col := &collection{Collection: plugin.Collection{ID: h.nextID("VariableCollectionId"), Name: name, Managed: true}}
	for _, m := range modes {
		col.Modes = append(col.Modes, plugin.Mode{ID: h.nextID("mode"), Name: m})
	}
	h.collections = append(h.collections, col)
	return col
}

// SetVariable creates or replaces a variable. values is keyed by mode name.
func (h *Host) SetVariable(collectionID, name string, typ plugin.VariableType, values map[string]plugin.VariableValue) (plugin.Variable, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	col := h.byID(collectionID)
	if col == nil {
		return plugin.Variable{}, fmt.Errorf("collection %s not found", collectionID)
	}
	v := col.find("", name)
	if v == nil {
		v = &plugin.Variable{ID: h.nextID("VariableID"), Name: name, CollectionID: col.ID}
		col.variables = append(col.variables, v)
	}
	v.ResolvedType = typ
	v.ValuesByMode = make(map[string]plugin.VariableValue, len(values))
	if err := col.setValues(v, values); err != nil {
		return plugin.Variable{}, err
	}
	col.VariableCount = len(col.variables)
	return *cloneVariable(*v), nil
}

// GetCollections lists every collection.
func (h *Host) GetCollections(context.Context) ([]plugin.Collection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]plugin.Collection, len(h.collections))
	for i, c := range h.collections {
		out[i] = c.snapshot()
	}
	return out, nil
}

// GetVariables lists the variables of one collection.
func (h *Host) GetVariables(_ context.Context, collectionID string) ([]plugin.Variable, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	col := h.byID(collectionID)
	if col == nil {
		return nil, fmt.Errorf("collection %s not found", collectionID)
	}
	out := make([]plugin.Variable, len(col.variables))
	for i, v := range col.variables {
		out[i] = *cloneVariable(*v)
	}
	return out, nil
}

// ApplyChanges creates missing modes first, then applies each change
// independently. A failed change is reported and skipped.
func (h *Host) ApplyChanges(_ context.Context, req plugin.ApplyRequest) (plugin.ApplyResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if req.CollectionName == "" {
		return plugin.ApplyResult{}, fmt.Errorf("collection name is required")
	}
	col := h.byName(req.CollectionName)
	if col == nil {
		col = h.addCollection(req.CollectionName, nil)
	}
	for _, m := range req.ModesToAdd {
		if _, ok := col.ModeByName(m); !ok {
			col.Modes = append(col.Modes, plugin.Mode{ID: h.nextID("mode"), Name: m})
		}
	}

	res := plugin.ApplyResult{}
	attempted := 0
	for _, ch := range req.Changes {
		if ch.Action == plugin.ActionUnchanged {
			continue
		}
		attempted++
		if err := h.apply(col, ch); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", ch.Action, ch.Name, err))
			continue
		}
		switch ch.Action {
		case plugin.ActionAdd:
			res.Created++
		case plugin.ActionUpdate:
			res.Updated++
		case plugin.ActionDelete:
			res.Deleted++
		}
	}
	col.VariableCount = len(col.variables)
	res.Success = attempted == 0 || len(res.Errors) < attempted
	return res, nil
}

func (h *Host) apply(col *collection, ch plugin.VariableChange) error {
	switch ch.Action {
	case plugin.ActionAdd:
		if col.find("", ch.Name) != nil {
			return fmt.Errorf("variable already exists")
		}
		if !validType(ch.ResolvedType) {
			return fmt.Errorf("unknown type %q", ch.ResolvedType)
		}
		v := &plugin.Variable{
			ID:           h.nextID("VariableID"),
			Name:         ch.Name,
			CollectionID: col.ID,
			ResolvedType: ch.ResolvedType,
			ValuesByMode: map[string]plugin.VariableValue{},
			Description:  ch.Description,
		}
		if err := col.setValues(v, ch.ValuesByMode); err != nil {
			return err
		}
		col.variables = append(col.variables, v)
	case plugin.ActionUpdate:
		v := col.find(ch.VariableID, ch.Name)
		if v == nil {
			return fmt.Errorf("variable not found")
		}
		next := cloneVariable(*v)
		if ch.ResolvedType != "" && ch.ResolvedType != next.ResolvedType {
			if !validType(ch.ResolvedType) {
				return fmt.Errorf("unknown type %q", ch.ResolvedType)
			}
			// Values of the old type cannot survive a type change.
			next.ResolvedType = ch.ResolvedType
			next.ValuesByMode = map[string]plugin.VariableValue{}
		}
		if err := col.setValues(next, ch.ValuesByMode); err != nil {
			return err
		}
		*v = *next
	case plugin.ActionDelete:
		v := col.find(ch.VariableID, ch.Name)
		if v == nil {
			return fmt.Errorf("variable not found")
		}
		col.variables = slices.DeleteFunc(col.variables, func(x *plugin.Variable) bool { return x == v })
	default:
		return fmt.Errorf("unknown action %q", ch.Action)
	}
	return nil
}

// CreateTypography records the request, stores text styles by name and
// upserts variables into the named collection.
func (h *Host) CreateTypography(_ context.Context, kind plugin.MessageType, payload plugin.TypographyPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !kind.IsTypography() {
		return fmt.Errorf("%q is not a typography request", kind)
	}
	h.typography = append(h.typography, TypographyCall{Kind: kind, Payload: payload})

	for _, s := range payload.TextStyles {
		i := slices.IndexFunc(h.styles, func(x plugin.TextStyle) bool { return x.Name == s.Name })
		if i < 0 {
			h.styles = append(h.styles, s)
		} else {
			h.styles[i] = s
		}
	}
	if len(payload.Variables) == 0 {
		return nil
	}

	modes := payload.Modes
	if len(modes) == 0 {
		modes = []string{"value"}
	}
	col := h.byName(payload.CollectionName)
	if col == nil {
		col = h.addCollection(payload.CollectionName, modes)
	}
	for _, m := range modes {
		if _, ok := col.ModeByName(m); !ok {
			col.Modes = append(col.Modes, plugin.Mode{ID: h.nextID("mode"), Name: m})
		}
	}
	for _, def := range payload.Variables {
		v := col.find("", def.Name)
		if v == nil {
			v = &plugin.Variable{ID: h.nextID("VariableID"), Name: def.Name, CollectionID: col.ID, ValuesByMode: map[string]plugin.VariableValue{}}
			col.variables = append(col.variables, v)
		}
		v.ResolvedType = def.ResolvedType
		if def.Alias != "" {
			v.Description = "alias of " + def.Alias
		}
		if err := col.setValues(v, def.ValuesByMode); err != nil {
			return fmt.Errorf("variable %s: %w", def.Name, err)
		}
	}
	col.VariableCount = len(col.variables)
	return nil
}

// TypographyCalls returns the recorded create-* requests.
func (h *Host) TypographyCalls() []TypographyCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.typography)
}

// GetProject returns a copy of everything the host holds.
func (h *Host) GetProject(context.Context) (plugin.ProjectSnapshot, error) {
	return h.Snapshot(), nil
}

// Snapshot returns a copy of everything the host holds.
func (h *Host) Snapshot() plugin.ProjectSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := plugin.ProjectSnapshot{
		Collections: make([]plugin.Collection, 0, len(h.collections)),
		Variables:   []plugin.Variable{},
		Styles:      slices.Clone(h.styles),
	}
	for _, c := range h.collections {
		snap.Collections = append(snap.Collections, c.snapshot())
		for _, v := range c.variables {
			snap.Variables = append(snap.Variables, *cloneVariable(*v))
		}
	}
	return snap
}

func (h *Host) byID(id string) *collection {
	for _, c := range h.collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (h *Host) byName(name string) *collection {
	for _, c := range h.collections {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (c *collection) snapshot() plugin.Collection {
	out := c.Collection
	out.Modes = slices.Clone(c.Modes)
	out.VariableCount = len(c.variables)
	return out
}

// find looks a variable up by id, or by name when id is empty.
func (c *collection) find(id, name string) *plugin.Variable {
	for _, v := range c.variables {
		if (id != "" && v.ID == id) || (id == "" && v.Name == name) {
			return v
		}
	}
	return nil
}

// setValues writes values keyed by mode name into v, keyed by mode id.
func (c *collection) setValues(v *plugin.Variable, values map[string]plugin.VariableValue) error {
	for modeName, val := range values {
		mode, ok := c.ModeByName(modeName)
		if !ok {
			return fmt.Errorf("mode %q does not exist", modeName)
		}
		if val.Kind != v.ResolvedType {
			return fmt.Errorf("mode %q: value of type %s does not match %s", modeName, val.Kind, v.ResolvedType)
		}
		v.ValuesByMode[mode.ID] = val
	}
	return nil
}

func validType(t plugin.VariableType) bool {
	switch t {
	case plugin.VariableColor, plugin.VariableFloat, plugin.VariableString, plugin.VariableBoolean:
		return true
	}
	return false
}

func cloneVariable(v plugin.Variable) *plugin.Variable {
	c := v
	c.ValuesByMode = make(map[string]plugin.VariableValue, len(v.ValuesByMode))
	for k, val := range v.ValuesByMode {
		c.ValuesByMode[k] = val
	}
	return &c
}
