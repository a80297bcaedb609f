package plugin

import (
	"context"
	"errors"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// HostRPC implements the go-plugin Plugin interface for hosts.
type HostRPC struct {
	plugin.Plugin
	Impl Host
}

// Server returns an RPC server for this host.
func (p *HostRPC) Server(*plugin.MuxBroker) (any, error) {
	return &HostRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this host.
func (p *HostRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &HostRPCClient{client: c}, nil
}

// Serve runs impl as a go-plugin host. It blocks until tokenkit disconnects.
func Serve(impl Host) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &HostRPC{Impl: impl},
		},
	})
}

// HostRPCServer is the RPC server implementation for hosts.
type HostRPCServer struct {
	Impl Host
}

// TypographyArgs are the arguments of CreateTypography.
type TypographyArgs struct {
	Kind    MessageType
	Payload TypographyPayload
}

// GetMetadata implements the RPC method for fetching host metadata.
func (s *HostRPCServer) GetMetadata(_ any, resp *HostInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// GetCollections implements the RPC method for listing collections.
func (s *HostRPCServer) GetCollections(_ any, resp *[]Collection) error {
	cols, err := s.Impl.GetCollections(context.Background())
	if err != nil {
		return err
	}
	*resp = cols
	return nil
}

// GetVariables implements the RPC method for listing a collection's variables.
func (s *HostRPCServer) GetVariables(collectionID string, resp *[]Variable) error {
	vars, err := s.Impl.GetVariables(context.Background(), collectionID)
	if err != nil {
		return err
	}
	*resp = vars
	return nil
}

// ApplyChanges implements the RPC method for applying changes.
func (s *HostRPCServer) ApplyChanges(req ApplyRequest, resp *ApplyResult) error {
	res, err := s.Impl.ApplyChanges(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = res
	return nil
}

// CreateTypography implements the RPC method for bulk typography creation.
func (s *HostRPCServer) CreateTypography(args TypographyArgs, resp *string) error {
	if err := s.Impl.CreateTypography(context.Background(), args.Kind, args.Payload); err != nil {
		*resp = err.Error()
		return err
	}
	return nil
}

// GetProject implements the RPC method for fetching a project snapshot.
func (s *HostRPCServer) GetProject(_ any, resp *ProjectSnapshot) error {
	snap, err := s.Impl.GetProject(context.Background())
	if err != nil {
		return err
	}
	*resp = snap
	return nil
}

// HostRPCClient is the RPC client implementation for hosts.
type HostRPCClient struct {
	client *rpc.Client
}

// call issues an asynchronous call so ctx can abandon it. net/rpc has no
// cancellation, so an abandoned call still completes on the host.
func (c *HostRPCClient) call(ctx context.Context, method string, args, reply any) error {
	call := c.client.Go("Plugin."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-call.Done:
		var se rpc.ServerError
		if errors.As(res.Error, &se) {
			return &RPCError{Message: string(se)}
		}
		return res.Error
	}
}

// GetMetadata calls the remote GetMetadata method.
func (c *HostRPCClient) GetMetadata() HostInfo {
	var info HostInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return HostInfo{}
	}
	return info
}

// GetCollections calls the remote GetCollections method.
func (c *HostRPCClient) GetCollections(ctx context.Context) ([]Collection, error) {
	var cols []Collection
	err := c.call(ctx, "GetCollections", new(any), &cols)
	return cols, err
}

// GetVariables calls the remote GetVariables method.
func (c *HostRPCClient) GetVariables(ctx context.Context, collectionID string) ([]Variable, error) {
	var vars []Variable
	err := c.call(ctx, "GetVariables", collectionID, &vars)
	return vars, err
}

// ApplyChanges calls the remote ApplyChanges method.
func (c *HostRPCClient) ApplyChanges(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	var res ApplyResult
	err := c.call(ctx, "ApplyChanges", req, &res)
	return res, err
}

// CreateTypography calls the remote CreateTypography method.
func (c *HostRPCClient) CreateTypography(ctx context.Context, kind MessageType, payload TypographyPayload) error {
	var errMsg string
	if err := c.call(ctx, "CreateTypography", TypographyArgs{Kind: kind, Payload: payload}, &errMsg); err != nil {
		return err
	}
	if errMsg != "" {
		return &RPCError{Message: errMsg}
	}
	return nil
}

// GetProject calls the remote GetProject method.
func (c *HostRPCClient) GetProject(ctx context.Context) (ProjectSnapshot, error) {
	var snap ProjectSnapshot
	err := c.call(ctx, "GetProject", new(any), &snap)
	return snap, err
}

// RPCError represents an error returned by a host.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
