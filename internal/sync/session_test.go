package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/generate"
	"github.com/jmylchreest/tokenkit/internal/token"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
	"github.com/jmylchreest/tokenkit/pkg/plugin/memhost"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

// generated returns a store holding the full default token set.
func generated(t *testing.T) *token.Store {
	t.Helper()
	store := token.NewStore()
	brand, err := colour.ParseColor("#3B82F6")
	require.NoError(t, err)
	themes := token.NewThemeRegistry(brand, nil)
	_, err = generate.New(store, nil).All(generate.Config{
		Typography: generate.TypographyConfig{Base: 16, Ratio: 1.25},
		Spacing:    generate.SpacingConfig{Base: 4},
		Radius:     generate.RadiusConfig{Base: 4},
		Shadow:     generate.ShadowConfig{Opacity: 0.1},
	}, themes.All())
	require.NoError(t, err)
	return store
}

func storeSource(s *token.Store) LocalSource {
	return func(collection string) ([]LocalVariable, []string) {
		return VariablesFromStore(s, collection)
	}
}

func newSession(t *testing.T, local LocalSource) *Session {
	t.Helper()
	return NewSession(SessionConfig{
		Local:   local,
		Timeout: 30 * time.Second,
		NewID:   sequence(),
		Now:     func() time.Time { return epoch },
	})
}

// respond answers req the way a host would.
func respond(t *testing.T, h plugin.Host, req plugin.Message) plugin.Message {
	t.Helper()
	resp, ok := plugin.Dispatch(context.Background(), h, req)
	require.True(t, ok)
	return resp
}

func TestSessionFlow(t *testing.T) {
	store := generated(t)
	host := memhost.New(plugin.HostProtocolGoPlugin)
	col := host.AddCollection(token.CollectionTokens, "light")
	s := newSession(t, storeSource(store))
	assert.Equal(t, StateIdle, s.State())

	req, err := s.RequestCollections()
	require.NoError(t, err)
	assert.Equal(t, StateLoadingCollections, s.State())
	assert.Equal(t, "req-1", req.RequestID)
	require.NoError(t, s.Handle(respond(t, host, req)))
	assert.Equal(t, StateIdle, s.State())
	require.Len(t, s.Collections(), 1)

	req, err = s.SelectCollection(col.ID)
	require.NoError(t, err)
	assert.Equal(t, StateLoadingVariables, s.State())
	require.NoError(t, s.Handle(respond(t, host, req)))
	assert.Equal(t, StateDiffReady, s.State())

	d, ok := s.Diff()
	require.True(t, ok)
	assert.Equal(t, len(generate.SemanticTable), d.Summary.Add)
	assert.Equal(t, []string{"dark"}, d.ModesToAdd)

	req, err = s.RequestApply()
	require.NoError(t, err)
	assert.Equal(t, StateApplying, s.State())
	require.NoError(t, s.Handle(respond(t, host, req)))
	assert.Equal(t, StateIdle, s.State(), "new modes need a collection reload")

	res, ok := s.Result()
	require.True(t, ok)
	assert.True(t, res.Success)
	assert.Equal(t, len(generate.SemanticTable), res.Created)
	assert.Empty(t, res.Errors)

	// A second pass over the same collection finds nothing to do.
	req, err = s.RequestCollections()
	require.NoError(t, err)
	require.NoError(t, s.Handle(respond(t, host, req)))
	assert.Equal(t, StateCollectionSelected, s.State())
	req, err = s.RequestVariables()
	require.NoError(t, err)
	require.NoError(t, s.Handle(respond(t, host, req)))
	d, _ = s.Diff()
	assert.Zero(t, d.Summary.Actionable())
	assert.Equal(t, len(generate.SemanticTable), d.Summary.Unchanged)
}

func TestSessionRejectsConcurrentRequests(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.RequestCollections()
	require.NoError(t, err)

	_, err = s.RequestCollections()
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Select("anything"), ErrBusy)
	_, err = s.RequestApply()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSessionDiscardsStaleResponses(t *testing.T) {
	s := newSession(t, nil)
	req, err := s.RequestCollections()
	require.NoError(t, err)

	stale := plugin.Message{Type: plugin.MsgCollectionsLoaded, RequestID: "req-0"}
	assert.ErrorIs(t, s.Handle(stale), ErrStaleResponse)
	assert.Equal(t, StateLoadingCollections, s.State())
	assert.Equal(t, req.RequestID, s.PendingID())

	require.NoError(t, s.Handle(plugin.Message{Type: plugin.MsgCollectionsLoaded, RequestID: req.RequestID}))
	assert.ErrorIs(t, s.Handle(plugin.Message{Type: plugin.MsgCollectionsLoaded, RequestID: req.RequestID}), ErrStaleResponse,
		"a request is answered once")
}

func TestSessionDiscardsVariablesForOtherCollection(t *testing.T) {
	host := memhost.New(plugin.HostProtocolGoPlugin)
	a := host.AddCollection("A", "value")
	s := newSession(t, nil)

	req, _ := s.RequestCollections()
	require.NoError(t, s.Handle(respond(t, host, req)))
	req, err := s.SelectCollection(a.ID)
	require.NoError(t, err)

	other := plugin.Message{Type: plugin.MsgVariablesLoaded, RequestID: req.RequestID, CollectionID: "elsewhere"}
	assert.ErrorIs(t, s.Handle(other), ErrStaleResponse)
	assert.Equal(t, StateLoadingVariables, s.State())
}

func TestSessionErrorResponse(t *testing.T) {
	s := newSession(t, nil)
	req, _ := s.RequestCollections()

	err := s.Handle(plugin.ErrorMessage(req.RequestID, errors.New("no document open")))
	var respErr *plugin.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "no document open", respErr.Message)
	assert.Equal(t, StateError, s.State())
	assert.Empty(t, s.PendingID())

	_, err = s.RequestCollections()
	assert.NoError(t, err, "a failed session can start over")
}

func TestSessionUnexpectedResponse(t *testing.T) {
	s := newSession(t, nil)
	req, _ := s.RequestCollections()
	err := s.Handle(plugin.Message{Type: plugin.MsgApplied, RequestID: req.RequestID})
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.Equal(t, StateError, s.State())
}

func TestSessionExpire(t *testing.T) {
	s := newSession(t, nil)
	assert.False(t, s.Expire(epoch.Add(time.Hour)), "nothing in flight")

	_, err := s.RequestCollections()
	require.NoError(t, err)
	assert.False(t, s.Expire(epoch.Add(29*time.Second)))
	assert.True(t, s.Expire(epoch.Add(31*time.Second)))
	assert.Equal(t, StateError, s.State())
	assert.ErrorIs(t, s.Err(), ErrTimeout)

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.NoError(t, s.Err())
}

func TestSessionSelectErrors(t *testing.T) {
	s := newSession(t, nil)
	assert.ErrorIs(t, s.Select("missing"), ErrUnknownCollection)
	_, err := s.RequestVariables()
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = s.RequestApply()
	assert.ErrorIs(t, err, ErrNoDiff)
}

func TestSessionSelectNewCollection(t *testing.T) {
	store := generated(t)
	s := newSession(t, storeSource(store))

	require.NoError(t, s.SelectNew(token.CollectionRadius))
	assert.Equal(t, StateDiffReady, s.State())
	_, onHost := s.Selected()
	assert.False(t, onHost)

	d, _ := s.Diff()
	assert.Equal(t, len(generate.RadiusMultipliers)+1, d.Summary.Add)
	assert.Equal(t, []string{token.ModeValue}, d.ModesToAdd)
}

func TestClientRoundTrip(t *testing.T) {
	store := generated(t)
	host := memhost.New(plugin.HostProtocolJSON)
	c := NewClient(host, newSession(t, storeSource(store)))
	ctx := context.Background()

	d, err := c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)
	assert.Equal(t, len(generate.SpacingLadder), d.Summary.Add)
	assert.Equal(t, []string{"desktop", "tablet", "mobile"}, d.ModesToAdd)

	res, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(generate.SpacingLadder), res.Created)

	assert.Nil(t, c.Session().Collections(), "apply that created a collection drops the stale list")

	d, err = c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)
	assert.Zero(t, d.Summary.Actionable(), "applying a diff converges")
	assert.Empty(t, d.ModesToAdd)
	assert.Equal(t, len(generate.SpacingLadder), d.Summary.Unchanged)
	_, onHost := c.Session().Selected()
	assert.True(t, onHost)
}

func TestClientReloadsAfterAddingModes(t *testing.T) {
	store := generated(t)
	host := memhost.New(plugin.HostProtocolJSON)
	c := NewClient(host, newSession(t, storeSource(store)))
	ctx := context.Background()

	_, err := c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)
	_, err = c.Apply(ctx)
	require.NoError(t, err)
	_, err = c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)

	require.NoError(t, store.SetModes(token.CollectionSpacing, []string{"desktop", "tablet", "mobile", "watch"}))
	d, err := c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)
	assert.Equal(t, []string{"watch"}, d.ModesToAdd)

	res, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Nil(t, c.Session().Collections())

	d, err = c.LoadDiff(ctx, token.CollectionSpacing)
	require.NoError(t, err)
	assert.Empty(t, d.ModesToAdd)
	assert.Zero(t, d.Summary.Actionable())
}

// slowHost blocks every call until its context is done.
type slowHost struct{ plugin.Host }

func (slowHost) GetCollections(ctx context.Context) ([]plugin.Collection, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestClientTimeout(t *testing.T) {
	s := NewSession(SessionConfig{Timeout: 10 * time.Millisecond})
	c := NewClient(slowHost{}, s)

	_, err := c.LoadCollections(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateError, s.State())
}

func TestClientTypeChangeConverges(t *testing.T) {
	host := memhost.New(plugin.HostProtocolJSON)
	col := host.AddCollection(token.CollectionRadius, token.ModeValue)
	_, err := host.SetVariable(col.ID, "radius/md", plugin.VariableString,
		map[string]plugin.VariableValue{token.ModeValue: plugin.StringValue("4px")})
	require.NoError(t, err)

	local := func(string) ([]LocalVariable, []string) {
		return []LocalVariable{{Name: "radius/md", Type: plugin.VariableFloat,
			ValuesByMode: map[string]plugin.VariableValue{token.ModeValue: plugin.FloatValue(4)}}}, []string{token.ModeValue}
	}
	c := NewClient(host, newSession(t, local))
	ctx := context.Background()

	d, err := c.LoadDiff(ctx, token.CollectionRadius)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Summary.Update)

	res, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Updated)

	d, err = c.LoadDiff(ctx, token.CollectionRadius)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Summary.Unchanged)
	assert.Zero(t, d.Summary.Actionable())
}
