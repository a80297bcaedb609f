package plugin

import (
	"fmt"
	"strconv"
)

// MessageType tags every message exchanged with a host.
type MessageType string

// Requests sent to the host.
const (
	MsgGetCollections            MessageType = "sync-get-collections"
	MsgGetVariables              MessageType = "sync-get-variables"
	MsgApplyChanges              MessageType = "sync-apply-changes"
	MsgGetProject                MessageType = "sync-get-project"
	MsgCreateTypographyVariables MessageType = "create-typography-variables"
	MsgCreateTextStyles          MessageType = "create-text-styles"
	MsgCreateSemanticTypography  MessageType = "create-semantic-typography-variables"
)

// Responses sent by the host.
const (
	MsgCollectionsLoaded MessageType = "sync-collections-loaded"
	MsgVariablesLoaded   MessageType = "sync-variables-loaded"
	MsgApplied           MessageType = "sync-applied"
	MsgProjectLoaded     MessageType = "sync-project-loaded"
	MsgSyncError         MessageType = "sync-error"
)

// IsTypography reports whether t is one of the create-* requests.
func (t MessageType) IsTypography() bool {
	switch t {
	case MsgCreateTypographyVariables, MsgCreateTextStyles, MsgCreateSemanticTypography:
		return true
	}
	return false
}

// Message is the envelope for every request and response. RequestID is set
// on requests and echoed on the matching response.
type Message struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`

	CollectionID   string           `json:"collectionId,omitempty"`
	CollectionName string           `json:"collectionName,omitempty"`
	Collections    []Collection     `json:"collections,omitempty"`
	Variables      []Variable       `json:"variables,omitempty"`
	Changes        []VariableChange `json:"changes,omitempty"`
	ModesToAdd     []string         `json:"modesToAdd,omitempty"`

	*ApplyResult

	Typography *TypographyPayload `json:"typography,omitempty"`
	Project    *ProjectSnapshot   `json:"project,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Mode is one mode of a host collection.
type Mode struct {
	ID   string `json:"modeId" yaml:"modeId"`
	Name string `json:"name" yaml:"name"`
}

// Collection is a host variable collection.
type Collection struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Modes         []Mode `json:"modes" yaml:"modes"`
	VariableCount int    `json:"variableCount" yaml:"variableCount"`

	// Managed collections were created by tokenkit and are the only ones
	// a project import walks.
	Managed bool `json:"managed" yaml:"managed"`
}

// ModeByName returns the mode with the given name.
func (c Collection) ModeByName(name string) (Mode, bool) {
	for _, m := range c.Modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}

// ModeNames lists the collection's mode names in order.
func (c Collection) ModeNames() []string {
	out := make([]string, len(c.Modes))
	for i, m := range c.Modes {
		out[i] = m.Name
	}
	return out
}

// VariableType is a host variable's resolved type.
type VariableType string

const (
	VariableColor   VariableType = "COLOR"
	VariableFloat   VariableType = "FLOAT"
	VariableString  VariableType = "STRING"
	VariableBoolean VariableType = "BOOLEAN"
)

// RGBA is a host colour with channels in [0, 1].
type RGBA struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// VariableValue holds one value of a variable. Kind selects the field in use.
type VariableValue struct {
	Kind   VariableType `json:"kind" yaml:"kind"`
	Color  RGBA         `json:"color,omitzero" yaml:"color,omitempty"`
	Float  float64      `json:"float,omitempty" yaml:"float,omitempty"`
	String string       `json:"string,omitempty" yaml:"string,omitempty"`
	Bool   bool         `json:"bool,omitempty" yaml:"bool,omitempty"`
}

// Value constructors.
func ColorValue(c RGBA) VariableValue    { return VariableValue{Kind: VariableColor, Color: c} }
func FloatValue(f float64) VariableValue { return VariableValue{Kind: VariableFloat, Float: f} }
func StringValue(s string) VariableValue { return VariableValue{Kind: VariableString, String: s} }
func BooleanValue(b bool) VariableValue  { return VariableValue{Kind: VariableBoolean, Bool: b} }

// Equal compares by kind: colours component-wise including alpha, numbers
// exactly, strings and booleans exactly. Values of different kinds differ.
func (v VariableValue) Equal(o VariableValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VariableColor:
		return v.Color == o.Color
	case VariableFloat:
		return v.Float == o.Float
	case VariableString:
		return v.String == o.String
	case VariableBoolean:
		return v.Bool == o.Bool
	}
	return true
}

// Format renders the value for display.
func (v VariableValue) Format() string {
	switch v.Kind {
	case VariableColor:
		return fmt.Sprintf("rgba(%g, %g, %g, %g)", v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	case VariableFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case VariableBoolean:
		return strconv.FormatBool(v.Bool)
	}
	return v.String
}

// Variable is a host variable. ValuesByMode is keyed by mode id.
type Variable struct {
	ID           string                   `json:"id" yaml:"id"`
	Name         string                   `json:"name" yaml:"name"`
	CollectionID string                   `json:"variableCollectionId" yaml:"variableCollectionId"`
	ResolvedType VariableType             `json:"resolvedType" yaml:"resolvedType"`
	ValuesByMode map[string]VariableValue `json:"valuesByMode" yaml:"valuesByMode"`
	Description  string                   `json:"description,omitempty" yaml:"description,omitempty"`
}

// ChangeAction is what a change does to one variable.
type ChangeAction string

const (
	ActionAdd       ChangeAction = "add"
	ActionUpdate    ChangeAction = "update"
	ActionDelete    ChangeAction = "delete"
	ActionUnchanged ChangeAction = "unchanged"
)

// VariableChange is one operation of an apply request. ValuesByMode is
// keyed by mode name, since new modes have no id yet.
type VariableChange struct {
	Action       ChangeAction             `json:"action" yaml:"action"`
	Name         string                   `json:"name" yaml:"name"`
	ResolvedType VariableType             `json:"resolvedType,omitempty" yaml:"resolvedType,omitempty"`
	ValuesByMode map[string]VariableValue `json:"valuesByMode,omitempty" yaml:"valuesByMode,omitempty"`
	VariableID   string                   `json:"variableId,omitempty" yaml:"variableId,omitempty"`
	Description  string                   `json:"description,omitempty" yaml:"description,omitempty"`
}

// ApplyRequest is the payload of sync-apply-changes.
type ApplyRequest struct {
	CollectionName string           `json:"collectionName" yaml:"collectionName"`
	Changes        []VariableChange `json:"changes" yaml:"changes"`
	ModesToAdd     []string         `json:"modesToAdd" yaml:"modesToAdd"`
}

// ApplyResult is the payload of sync-applied. Counts reflect only what
// succeeded; Success may be true alongside a non-empty Errors.
type ApplyResult struct {
	Success bool     `json:"success" yaml:"success"`
	Created int      `json:"created" yaml:"created"`
	Updated int      `json:"updated" yaml:"updated"`
	Deleted int      `json:"deleted" yaml:"deleted"`
	Errors  []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Partial reports whether some changes failed.
func (r ApplyResult) Partial() bool {
	return r.Success && len(r.Errors) > 0
}

// VariableDefinition is a variable to materialise in bulk.
// Alias, when set, is the full path of the variable this one references.
type VariableDefinition struct {
	Name         string                   `json:"name" yaml:"name"`
	ResolvedType VariableType             `json:"resolvedType" yaml:"resolvedType"`
	ValuesByMode map[string]VariableValue `json:"valuesByMode" yaml:"valuesByMode"`
	Alias        string                   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// TextStyle is a named combination of typography values.
type TextStyle struct {
	Name          string  `json:"name" yaml:"name"`
	FontFamily    string  `json:"fontFamily" yaml:"fontFamily"`
	FontSize      float64 `json:"fontSize" yaml:"fontSize"`
	FontWeight    float64 `json:"fontWeight" yaml:"fontWeight"`
	LineHeight    float64 `json:"lineHeight" yaml:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing" yaml:"letterSpacing"`
}

// TypographyPayload carries the snapshot for the create-* requests.
type TypographyPayload struct {
	CollectionName string               `json:"collectionName" yaml:"collectionName"`
	Modes          []string             `json:"modes,omitempty" yaml:"modes,omitempty"`
	Variables      []VariableDefinition `json:"variables,omitempty" yaml:"variables,omitempty"`
	TextStyles     []TextStyle          `json:"textStyles,omitempty" yaml:"textStyles,omitempty"`
}

// ProjectSnapshot is the host's full state for a project import.
type ProjectSnapshot struct {
	Collections []Collection `json:"collections" yaml:"collections"`
	Variables   []Variable   `json:"variables" yaml:"variables"`
	Styles      []TextStyle  `json:"styles,omitempty" yaml:"styles,omitempty"`
}

// CollectionVariables returns the variables belonging to one collection.
func (s ProjectSnapshot) CollectionVariables(collectionID string) []Variable {
	var out []Variable
	for _, v := range s.Variables {
		if v.CollectionID == collectionID {
			out = append(out, v)
		}
	}
	return out
}
