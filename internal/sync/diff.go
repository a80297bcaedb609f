// Package sync reconciles local tokens with a host's variable collections:
// a pure diff, a request/response session, and a project importer.
package sync

import (
	"maps"
	"slices"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// LocalVariable is a token as the host would see it. ValuesByMode is keyed
// by mode name.
type LocalVariable struct {
	Name         string
	Type         plugin.VariableType
	ValuesByMode map[string]plugin.VariableValue
	Description  string
}

// DiffInput is a snapshot of both sides of one collection.
type DiffInput struct {
	CollectionName string
	Local          []LocalVariable

	// HostCollection is nil when the collection does not exist on the host yet.
	HostCollection *plugin.Collection
	HostVariables  []plugin.Variable

	// LocalModes are the modes the local collection materialises.
	LocalModes []string

	IncludeDeletes bool
}

// Change is one entry of a diff. Values are keyed by mode name; Previous
// holds the host's values for updates and deletes.
type Change struct {
	Action      plugin.ChangeAction
	Name        string
	Type        plugin.VariableType
	Values      map[string]plugin.VariableValue
	Previous    map[string]plugin.VariableValue
	VariableID  string
	Description string
}

// Wire converts the change into its apply-request form.
func (c Change) Wire() plugin.VariableChange {
	out := plugin.VariableChange{
		Action:       c.Action,
		Name:         c.Name,
		ResolvedType: c.Type,
		VariableID:   c.VariableID,
		Description:  c.Description,
	}
	if c.Action != plugin.ActionDelete {
		out.ValuesByMode = maps.Clone(c.Values)
	}
	return out
}

// Summary tallies a diff by action.
type Summary struct {
	Add       int `json:"add"`
	Update    int `json:"update"`
	Delete    int `json:"delete"`
	Unchanged int `json:"unchanged"`
}

// Actionable is the number of changes an apply would send.
func (s Summary) Actionable() int {
	return s.Add + s.Update + s.Delete
}

// SyncDiff is the result of ComputeDiff.
type SyncDiff struct {
	Collection string
	Changes    []Change
	Summary    Summary

	// ModesToAdd must be created on the host before any value is written.
	ModesToAdd []string
}

// ComputeDiff classifies every local variable as add, update or unchanged
// against the host variable of the same name, and, when deletes are
// included, every unmatched host variable as delete. Changes follow local
// order, then host order for deletes. If the host holds duplicate names the
// first one wins.
func ComputeDiff(in DiffInput) SyncDiff {
	d := SyncDiff{Collection: in.CollectionName}

	hostByName := make(map[string]*plugin.Variable, len(in.HostVariables))
	for i := range in.HostVariables {
		v := &in.HostVariables[i]
		if _, dup := hostByName[v.Name]; !dup {
			hostByName[v.Name] = v
		}
	}

	modeIDs := make(map[string]string)
	modeNames := make(map[string]string)
	if in.HostCollection != nil {
		for _, m := range in.HostCollection.Modes {
			modeIDs[m.Name] = m.ID
			modeNames[m.ID] = m.Name
		}
	}

	matched := make(map[string]struct{}, len(in.Local))
	for _, lv := range in.Local {
		matched[lv.Name] = struct{}{}
		hv, ok := hostByName[lv.Name]
		if !ok {
			d.Changes = append(d.Changes, Change{
				Action:      plugin.ActionAdd,
				Name:        lv.Name,
				Type:        lv.Type,
				Values:      maps.Clone(lv.ValuesByMode),
				Description: lv.Description,
			})
			d.Summary.Add++
			continue
		}

		action := plugin.ActionUnchanged
		if !sameValues(lv, hv, modeIDs) {
			action = plugin.ActionUpdate
			d.Summary.Update++
		} else {
			d.Summary.Unchanged++
		}
		d.Changes = append(d.Changes, Change{
			Action:      action,
			Name:        lv.Name,
			Type:        lv.Type,
			Values:      maps.Clone(lv.ValuesByMode),
			Previous:    byModeName(hv, modeNames),
			VariableID:  hv.ID,
			Description: lv.Description,
		})
	}

	if in.IncludeDeletes {
		for i := range in.HostVariables {
			hv := &in.HostVariables[i]
			if _, local := matched[hv.Name]; local {
				// Shadowed duplicates of a local name are left alone.
				continue
			}
			d.Changes = append(d.Changes, Change{
				Action:     plugin.ActionDelete,
				Name:       hv.Name,
				Type:       hv.ResolvedType,
				Previous:   byModeName(hv, modeNames),
				VariableID: hv.ID,
			})
			d.Summary.Delete++
		}
	}

	for _, m := range in.LocalModes {
		if _, ok := modeIDs[m]; !ok && !slices.Contains(d.ModesToAdd, m) {
			d.ModesToAdd = append(d.ModesToAdd, m)
		}
	}
	return d
}

// sameValues compares types and every local mode value. A local mode the
// host does not have yet counts as a difference.
func sameValues(lv LocalVariable, hv *plugin.Variable, modeIDs map[string]string) bool {
	if lv.Type != hv.ResolvedType {
		return false
	}
	for mode, want := range lv.ValuesByMode {
		id, ok := modeIDs[mode]
		if !ok {
			return false
		}
		got, ok := hv.ValuesByMode[id]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

func byModeName(hv *plugin.Variable, modeNames map[string]string) map[string]plugin.VariableValue {
	out := make(map[string]plugin.VariableValue, len(hv.ValuesByMode))
	for id, v := range hv.ValuesByMode {
		if name, ok := modeNames[id]; ok {
			out[name] = v
		} else {
			out[id] = v
		}
	}
	return out
}

// ActionableChanges drops unchanged entries, keeping order.
func ActionableChanges(d SyncDiff) []Change {
	out := make([]Change, 0, d.Summary.Actionable())
	for _, c := range d.Changes {
		if c.Action != plugin.ActionUnchanged {
			out = append(out, c)
		}
	}
	return out
}

// ApplyRequest builds the sync-apply-changes payload for a diff.
func ApplyRequest(d SyncDiff) plugin.ApplyRequest {
	changes := ActionableChanges(d)
	req := plugin.ApplyRequest{
		CollectionName: d.Collection,
		Changes:        make([]plugin.VariableChange, len(changes)),
		ModesToAdd:     slices.Clone(d.ModesToAdd),
	}
	for i, c := range changes {
		req.Changes[i] = c.Wire()
	}
	return req
}
