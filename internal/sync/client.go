package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// Client drives a Session against a Host, one request at a time.
type Client struct {
	host    plugin.Host
	session *Session
}

// NewClient binds a session to a host.
func NewClient(host plugin.Host, session *Session) *Client {
	return &Client{host: host, session: session}
}

// Session returns the underlying session.
func (c *Client) Session() *Session { return c.session }

// exchange sends req and feeds the response back into the session. A
// request that outlives the session timeout fails with ErrTimeout.
func (c *Client) exchange(ctx context.Context, req plugin.Message) error {
	ctx, cancel := context.WithTimeout(ctx, c.session.cfg.Timeout)
	defer cancel()

	resp, ok := plugin.Dispatch(ctx, c.host, req)
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s", ErrTimeout, req.Type)
		}
		c.session.Abort(err)
		return err
	}
	if !ok {
		return fmt.Errorf("%s: host sent no response", req.Type)
	}
	return c.session.Handle(resp)
}

// LoadCollections fetches the host's collections.
func (c *Client) LoadCollections(ctx context.Context) ([]plugin.Collection, error) {
	req, err := c.session.RequestCollections()
	if err != nil {
		return nil, err
	}
	if err := c.exchange(ctx, req); err != nil {
		return nil, err
	}
	return c.session.Collections(), nil
}

// LoadDiff diffs the named local collection against the host. Collections
// are loaded first if needed; a collection the host lacks diffs against an
// empty side.
func (c *Client) LoadDiff(ctx context.Context, collection string) (SyncDiff, error) {
	if c.session.Collections() == nil {
		if _, err := c.LoadCollections(ctx); err != nil {
			return SyncDiff{}, err
		}
	}
	if err := c.session.SelectNew(collection); err != nil {
		return SyncDiff{}, err
	}
	if _, onHost := c.session.Selected(); onHost {
		req, err := c.session.RequestVariables()
		if err != nil {
			return SyncDiff{}, err
		}
		if err := c.exchange(ctx, req); err != nil {
			return SyncDiff{}, err
		}
	}
	d, _ := c.session.Diff()
	return d, nil
}

// Apply sends the current diff. A result listing per-change errors is not
// an error; check ApplyResult.Errors.
func (c *Client) Apply(ctx context.Context) (plugin.ApplyResult, error) {
	req, err := c.session.RequestApply()
	if err != nil {
		return plugin.ApplyResult{}, err
	}
	if err := c.exchange(ctx, req); err != nil {
		return plugin.ApplyResult{}, err
	}
	res, _ := c.session.Result()
	return res, nil
}

// CreateTypography sends one of the create-* requests. The host does not
// answer these, so the session is not involved.
func (c *Client) CreateTypography(ctx context.Context, kind plugin.MessageType, payload plugin.TypographyPayload) error {
	ctx, cancel := context.WithTimeout(ctx, c.session.cfg.Timeout)
	defer cancel()
	return c.host.CreateTypography(ctx, kind, payload)
}

// Project fetches a full snapshot of the host's managed data.
func (c *Client) Project(ctx context.Context) (plugin.ProjectSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.session.cfg.Timeout)
	defer cancel()
	return c.host.GetProject(ctx)
}
