package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDispatch(t *testing.T) {
	mock := newMockHost()
	ctx := context.Background()

	tests := []struct {
		name     string
		req      Message
		wantType MessageType
		wantOK   bool
	}{
		{"collections", Message{Type: MsgGetCollections, RequestID: "r1"}, MsgCollectionsLoaded, true},
		{"variables", Message{Type: MsgGetVariables, RequestID: "r2", CollectionID: "c1"}, MsgVariablesLoaded, true},
		{"apply", Message{Type: MsgApplyChanges, RequestID: "r3", CollectionName: "Tokens"}, MsgApplied, true},
		{"project", Message{Type: MsgGetProject, RequestID: "r4"}, MsgProjectLoaded, true},
		{"text styles", Message{Type: MsgCreateTextStyles, RequestID: "r5"}, "", false},
		{"unknown", Message{Type: "sync-frobnicate", RequestID: "r6"}, MsgSyncError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok := Dispatch(ctx, mock, tt.req)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if resp.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", resp.Type, tt.wantType)
			}
			if ok && resp.RequestID != tt.req.RequestID {
				t.Errorf("RequestID = %q, want %q", resp.RequestID, tt.req.RequestID)
			}
		})
	}
}

func TestDispatchHostError(t *testing.T) {
	mock := newMockHost()
	mock.err = errors.New("no document open")

	resp, ok := Dispatch(context.Background(), mock, Message{Type: MsgGetVariables, RequestID: "r1", CollectionID: "c1"})
	if !ok || resp.Type != MsgSyncError || resp.Error != "no document open" || resp.RequestID != "r1" {
		t.Errorf("Dispatch() = %+v, %v", resp, ok)
	}
}

func TestAppliedMessageShape(t *testing.T) {
	msg := Message{Type: MsgApplied, RequestID: "r1", ApplyResult: &ApplyResult{Success: true, Created: 1, Errors: []string{"x"}}}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"success", "created", "updated", "deleted", "errors"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("sync-applied is missing top-level %q: %s", key, data)
		}
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.ApplyResult == nil || back.Created != 1 {
		t.Errorf("decoded %+v", back)
	}

	data, _ = json.Marshal(Message{Type: MsgGetCollections})
	if strings.Contains(string(data), "success") {
		t.Errorf("requests must not carry result fields: %s", data)
	}
}

// loopback runs Dispatch in-process, optionally tampering with responses.
func loopback(h Host, tamper func(*Message)) RoundTrip {
	return func(ctx context.Context, req Message) (Message, error) {
		resp, ok := Dispatch(ctx, h, req)
		if !ok {
			return Message{}, nil
		}
		if tamper != nil {
			tamper(&resp)
		}
		return resp, nil
	}
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func TestMessageClient(t *testing.T) {
	mock := newMockHost()
	c := &MessageClient{Info: mock.metadata, Send: loopback(mock, nil), NewID: sequence()}
	ctx := context.Background()

	cols, err := c.GetCollections(ctx)
	if err != nil || len(cols) != 1 {
		t.Fatalf("GetCollections() = %v, %v", cols, err)
	}
	vars, err := c.GetVariables(ctx, "c1")
	if err != nil || len(vars) != 1 {
		t.Fatalf("GetVariables() = %v, %v", vars, err)
	}
	res, err := c.ApplyChanges(ctx, ApplyRequest{CollectionName: "Tokens"})
	if err != nil || res.Created != 2 {
		t.Fatalf("ApplyChanges() = %+v, %v", res, err)
	}
	if err := c.CreateTypography(ctx, MsgCreateSemanticTypography, TypographyPayload{CollectionName: "Typography"}); err != nil {
		t.Fatalf("CreateTypography() error = %v", err)
	}
	if mock.lastKind != MsgCreateSemanticTypography {
		t.Errorf("lastKind = %q", mock.lastKind)
	}
	if err := c.CreateTypography(ctx, MsgGetCollections, TypographyPayload{}); err == nil {
		t.Error("CreateTypography() accepted a non-typography kind")
	}
}

func TestMessageClientRejectsStaleResponse(t *testing.T) {
	mock := newMockHost()
	c := &MessageClient{Send: loopback(mock, func(m *Message) { m.RequestID = "req-0" }), NewID: sequence()}

	_, err := c.GetCollections(context.Background())
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Errorf("GetCollections() error = %v", err)
	}
}

func TestMessageClientSyncError(t *testing.T) {
	mock := newMockHost()
	mock.err = errors.New("locked")
	c := &MessageClient{Send: loopback(mock, nil), NewID: sequence()}

	_, err := c.ApplyChanges(context.Background(), ApplyRequest{CollectionName: "Tokens"})
	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.Message != "locked" {
		t.Errorf("ApplyChanges() error = %v", err)
	}
}

func TestServeJSON(t *testing.T) {
	mock := newMockHost()
	in := strings.NewReader(`{"type":"sync-get-variables","requestId":"abc","collectionId":"c1"}`)
	var out bytes.Buffer

	if err := ServeJSON(context.Background(), mock, in, &out); err != nil {
		t.Fatalf("ServeJSON() error = %v", err)
	}
	var resp Message
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Type != MsgVariablesLoaded || resp.RequestID != "abc" || len(resp.Variables) != 1 {
		t.Errorf("response = %+v", resp)
	}

	out.Reset()
	if err := ServeJSON(context.Background(), mock, strings.NewReader(`{"type":"create-text-styles"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("create-text-styles wrote a response: %s", out.String())
	}

	if err := ServeJSON(context.Background(), mock, strings.NewReader(`not json`), &out); err == nil {
		t.Error("ServeJSON() accepted malformed input")
	}
}

func TestVariableValueEqual(t *testing.T) {
	c := ColorValue(RGBA{R: 0.23, G: 0.51, B: 0.96, A: 1})
	tests := []struct {
		a, b VariableValue
		want bool
	}{
		{c, c, true},
		{c, ColorValue(RGBA{R: 0.23, G: 0.51, B: 0.96, A: 0.99}), false},
		{FloatValue(4), FloatValue(4), true},
		{FloatValue(4), FloatValue(4.0000001), false},
		{FloatValue(1), StringValue("1"), false},
		{StringValue("Inter"), StringValue("Inter"), true},
		{BooleanValue(true), BooleanValue(false), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s.Equal(%s) = %v, want %v", tt.a.Format(), tt.b.Format(), got, tt.want)
		}
	}
}
