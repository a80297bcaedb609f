package plugin

import (
	"context"
	"fmt"
)

var (
	_ Host = (*HostRPCClient)(nil)
	_ Host = (*MessageClient)(nil)
)

// ErrorMessage builds a sync-error response for a request.
func ErrorMessage(requestID string, err error) Message {
	return Message{Type: MsgSyncError, RequestID: requestID, Error: err.Error()}
}

// Dispatch serves one request message against h and returns the response.
// The create-* requests have no response contract; ok is false for them
// unless they fail. Host errors become sync-error responses.
func Dispatch(ctx context.Context, h Host, msg Message) (resp Message, ok bool) {
	id := msg.RequestID
	switch msg.Type {
	case MsgGetCollections:
		cols, err := h.GetCollections(ctx)
		if err != nil {
			return ErrorMessage(id, err), true
		}
		return Message{Type: MsgCollectionsLoaded, RequestID: id, Collections: cols}, true

	case MsgGetVariables:
		vars, err := h.GetVariables(ctx, msg.CollectionID)
		if err != nil {
			return ErrorMessage(id, err), true
		}
		return Message{Type: MsgVariablesLoaded, RequestID: id, CollectionID: msg.CollectionID, Variables: vars}, true

	case MsgApplyChanges:
		res, err := h.ApplyChanges(ctx, ApplyRequest{
			CollectionName: msg.CollectionName,
			Changes:        msg.Changes,
			ModesToAdd:     msg.ModesToAdd,
		})
		if err != nil {
			return ErrorMessage(id, err), true
		}
		return Message{Type: MsgApplied, RequestID: id, CollectionName: msg.CollectionName, ApplyResult: &res}, true

	case MsgGetProject:
		snap, err := h.GetProject(ctx)
		if err != nil {
			return ErrorMessage(id, err), true
		}
		return Message{Type: MsgProjectLoaded, RequestID: id, Project: &snap}, true

	case MsgCreateTypographyVariables, MsgCreateTextStyles, MsgCreateSemanticTypography:
		var payload TypographyPayload
		if msg.Typography != nil {
			payload = *msg.Typography
		}
		if err := h.CreateTypography(ctx, msg.Type, payload); err != nil {
			return ErrorMessage(id, err), true
		}
		return Message{}, false
	}
	return ErrorMessage(id, fmt.Errorf("unknown message type %q", msg.Type)), true
}

// RoundTrip sends one request and waits for its response.
type RoundTrip func(ctx context.Context, req Message) (Message, error)

// MessageClient adapts a message transport to Host. Every request gets a
// fresh id; a response carrying a different id is rejected.
type MessageClient struct {
	Info  HostInfo
	Send  RoundTrip
	NewID func() string
}

// ResponseError is a sync-error received from a host.
type ResponseError struct {
	RequestID string
	Message   string
}

func (e *ResponseError) Error() string {
	return "host: " + e.Message
}

func (c *MessageClient) roundTrip(ctx context.Context, req Message, want MessageType) (Message, error) {
	req.RequestID = c.NewID()
	resp, err := c.Send(ctx, req)
	if err != nil {
		return Message{}, fmt.Errorf("%s: %w", req.Type, err)
	}
	if resp.RequestID != req.RequestID {
		return Message{}, fmt.Errorf("%s: response id %q does not match request %q", req.Type, resp.RequestID, req.RequestID)
	}
	if resp.Type == MsgSyncError {
		return Message{}, &ResponseError{RequestID: resp.RequestID, Message: resp.Error}
	}
	if resp.Type != want {
		return Message{}, fmt.Errorf("%s: unexpected response %q", req.Type, resp.Type)
	}
	return resp, nil
}

// GetMetadata returns the metadata supplied at construction.
func (c *MessageClient) GetMetadata() HostInfo { return c.Info }

// GetCollections sends sync-get-collections.
func (c *MessageClient) GetCollections(ctx context.Context) ([]Collection, error) {
	resp, err := c.roundTrip(ctx, Message{Type: MsgGetCollections}, MsgCollectionsLoaded)
	return resp.Collections, err
}

// GetVariables sends sync-get-variables.
func (c *MessageClient) GetVariables(ctx context.Context, collectionID string) ([]Variable, error) {
	resp, err := c.roundTrip(ctx, Message{Type: MsgGetVariables, CollectionID: collectionID}, MsgVariablesLoaded)
	return resp.Variables, err
}

// ApplyChanges sends sync-apply-changes.
func (c *MessageClient) ApplyChanges(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	resp, err := c.roundTrip(ctx, Message{
		Type:           MsgApplyChanges,
		CollectionName: req.CollectionName,
		Changes:        req.Changes,
		ModesToAdd:     req.ModesToAdd,
	}, MsgApplied)
	if err != nil {
		return ApplyResult{}, err
	}
	if resp.ApplyResult == nil {
		return ApplyResult{}, fmt.Errorf("%s: response carries no result", MsgApplyChanges)
	}
	return *resp.ApplyResult, nil
}

// CreateTypography sends one of the create-* requests. Only a sync-error
// reply is meaningful; Send may return a zero Message when there is none.
func (c *MessageClient) CreateTypography(ctx context.Context, kind MessageType, payload TypographyPayload) error {
	if !kind.IsTypography() {
		return fmt.Errorf("%q is not a typography request", kind)
	}
	req := Message{Type: kind, RequestID: c.NewID(), Typography: &payload}
	resp, err := c.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if resp.Type == MsgSyncError {
		return &ResponseError{RequestID: resp.RequestID, Message: resp.Error}
	}
	return nil
}

// GetProject sends sync-get-project.
func (c *MessageClient) GetProject(ctx context.Context) (ProjectSnapshot, error) {
	resp, err := c.roundTrip(ctx, Message{Type: MsgGetProject}, MsgProjectLoaded)
	if err != nil {
		return ProjectSnapshot{}, err
	}
	if resp.Project == nil {
		return ProjectSnapshot{}, nil
	}
	return *resp.Project, nil
}
