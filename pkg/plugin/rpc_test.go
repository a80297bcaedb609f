package plugin

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"testing"
	"time"
)

// mockHost records calls and returns canned data.
type mockHost struct {
	metadata    HostInfo
	collections []Collection
	variables   map[string][]Variable
	result      ApplyResult
	project     ProjectSnapshot
	err         error
	block       chan struct{}

	lastApply      ApplyRequest
	lastTypography TypographyPayload
	lastKind       MessageType
}

func (m *mockHost) GetMetadata() HostInfo { return m.metadata }

func (m *mockHost) GetCollections(context.Context) ([]Collection, error) {
	if m.block != nil {
		<-m.block
	}
	return m.collections, m.err
}

func (m *mockHost) GetVariables(_ context.Context, id string) ([]Variable, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.variables[id], nil
}

func (m *mockHost) ApplyChanges(_ context.Context, req ApplyRequest) (ApplyResult, error) {
	m.lastApply = req
	return m.result, m.err
}

func (m *mockHost) CreateTypography(_ context.Context, kind MessageType, payload TypographyPayload) error {
	m.lastKind = kind
	m.lastTypography = payload
	return m.err
}

func (m *mockHost) GetProject(context.Context) (ProjectSnapshot, error) {
	return m.project, m.err
}

func newMockHost() *mockHost {
	return &mockHost{
		metadata: HostInfo{
			Name:            "mock",
			Version:         "1.0.0",
			ProtocolVersion: ProtocolVersion,
			HostProtocol:    string(HostProtocolGoPlugin),
		},
		collections: []Collection{{ID: "c1", Name: "Tokens", Modes: []Mode{{ID: "m1", Name: "light"}}, VariableCount: 1, Managed: true}},
		variables: map[string][]Variable{
			"c1": {{
				ID:           "v1",
				Name:         "color/text/primary",
				CollectionID: "c1",
				ResolvedType: VariableColor,
				ValuesByMode: map[string]VariableValue{"m1": ColorValue(RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1})},
			}},
		},
		result: ApplyResult{Success: true, Created: 2, Errors: []string{"update x: variable not found"}},
	}
}

// connect serves impl over an in-process pipe and returns a client.
func connect(t *testing.T, impl Host) *HostRPCClient {
	t.Helper()
	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", &HostRPCServer{Impl: impl}); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}
	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)
	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { client.Close() })
	return &HostRPCClient{client: client}
}

func TestHostRPC(t *testing.T) {
	mock := newMockHost()
	p := &HostRPC{Impl: mock}

	t.Run("Server", func(t *testing.T) {
		server, err := p.Server(nil)
		if err != nil {
			t.Fatalf("Server() error = %v", err)
		}
		rpcServer, ok := server.(*HostRPCServer)
		if !ok {
			t.Fatal("Server() returned wrong type")
		}
		if rpcServer.Impl != mock {
			t.Fatal("Server() impl not set correctly")
		}
	})

	t.Run("Client", func(t *testing.T) {
		client, err := p.Client(nil, nil)
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		if _, ok := client.(*HostRPCClient); !ok {
			t.Fatal("Client() returned wrong type")
		}
	})
}

func TestHostRPCRoundTrip(t *testing.T) {
	mock := newMockHost()
	c := connect(t, mock)
	ctx := context.Background()

	if got := c.GetMetadata(); got.Name != "mock" || got.ProtocolVersion != ProtocolVersion {
		t.Errorf("GetMetadata() = %+v", got)
	}

	cols, err := c.GetCollections(ctx)
	if err != nil {
		t.Fatalf("GetCollections() error = %v", err)
	}
	if len(cols) != 1 || cols[0].Name != "Tokens" || !cols[0].Managed {
		t.Errorf("GetCollections() = %+v", cols)
	}

	vars, err := c.GetVariables(ctx, "c1")
	if err != nil {
		t.Fatalf("GetVariables() error = %v", err)
	}
	if len(vars) != 1 || !vars[0].ValuesByMode["m1"].Equal(ColorValue(RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1})) {
		t.Errorf("GetVariables() = %+v", vars)
	}

	req := ApplyRequest{
		CollectionName: "Tokens",
		Changes:        []VariableChange{{Action: ActionAdd, Name: "spacing/md", ResolvedType: VariableFloat, ValuesByMode: map[string]VariableValue{"value": FloatValue(16)}}},
		ModesToAdd:     []string{"dark"},
	}
	res, err := c.ApplyChanges(ctx, req)
	if err != nil {
		t.Fatalf("ApplyChanges() error = %v", err)
	}
	if !res.Partial() || res.Created != 2 {
		t.Errorf("ApplyChanges() = %+v", res)
	}
	if mock.lastApply.ModesToAdd[0] != "dark" || mock.lastApply.Changes[0].ValuesByMode["value"].Float != 16 {
		t.Errorf("host received %+v", mock.lastApply)
	}

	payload := TypographyPayload{CollectionName: "Typography", TextStyles: []TextStyle{{Name: "body", FontSize: 16}}}
	if err := c.CreateTypography(ctx, MsgCreateTextStyles, payload); err != nil {
		t.Fatalf("CreateTypography() error = %v", err)
	}
	if mock.lastKind != MsgCreateTextStyles || mock.lastTypography.TextStyles[0].Name != "body" {
		t.Errorf("host received %s %+v", mock.lastKind, mock.lastTypography)
	}
}

func TestHostRPCErrors(t *testing.T) {
	mock := newMockHost()
	mock.err = errors.New("document is read-only")
	c := connect(t, mock)

	_, err := c.GetCollections(context.Background())
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("GetCollections() error = %T %v, want *RPCError", err, err)
	}
	if rpcErr.Message != "document is read-only" {
		t.Errorf("RPCError.Message = %q", rpcErr.Message)
	}

	err = c.CreateTypography(context.Background(), MsgCreateTypographyVariables, TypographyPayload{})
	if !errors.As(err, &rpcErr) {
		t.Errorf("CreateTypography() error = %v, want *RPCError", err)
	}
}

func TestHostRPCContextCancel(t *testing.T) {
	mock := newMockHost()
	mock.block = make(chan struct{})
	defer close(mock.block)
	c := connect(t, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetCollections(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetCollections() error = %v, want deadline exceeded", err)
	}
}

func TestRPCError(t *testing.T) {
	err := &RPCError{Message: "boom"}
	if err.Error() != "boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
