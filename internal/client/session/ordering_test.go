package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/client/models"
	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gate holds a flow's network call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	close(g.entered)
	<-g.release
}

type result struct {
	auth models.Authentication
	err  error
}

func TestOrdering_LoginThenLogoutBeforeSettle(t *testing.T) {
	ctx := context.Background()
	token := mint(t, time.Now().Add(time.Hour))
	g := newGate()
	tr := &fakeTransport{PostFn: func(string, any) (string, error) {
		g.wait()
		return authBody(token), nil
	}}
	store := memStore()
	m := NewManager(store, tr)

	done := make(chan result, 1)
	go func() {
		auth, err := m.Login(ctx, "ann", "pw")
		done <- result{auth, err}
	}()

	<-g.entered
	require.True(t, m.Logout(ctx))
	close(g.release)
	res := <-done

	require.ErrorIs(t, res.err, common.ErrSessionSuperseded)
	assert.Equal(t, token, res.auth.JWT, "the response is still handed back")

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "logout started last, so nothing is stored")
	assert.False(t, m.IsAuthenticated(ctx))
}

func TestOrdering_LogoutAfterLoginSettles(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memStore(), &fakeTransport{PostRet: authBody(mint(t, time.Now().Add(time.Hour)))})

	_, err := m.Login(ctx, "ann", "pw")
	require.NoError(t, err)
	require.True(t, m.Logout(ctx))

	got, _ := m.Token(ctx)
	assert.Empty(t, got)
}

func TestOrdering_LaterStartedLoginWins(t *testing.T) {
	ctx := context.Background()
	first := mint(t, time.Now().Add(time.Hour))
	second := mint(t, time.Now().Add(2*time.Hour))

	g := newGate()
	var once sync.Once
	tr := &fakeTransport{PostFn: func(_ string, body any) (string, error) {
		if body.(map[string]string)["identifier"] == "first" {
			once.Do(g.wait)
			return authBody(first), nil
		}
		return authBody(second), nil
	}}
	store := memStore()
	m := NewManager(store, tr)

	done := make(chan result, 1)
	go func() {
		auth, err := m.Login(ctx, "first", "pw")
		done <- result{auth, err}
	}()
	<-g.entered

	// The second login starts and settles while the first is in flight.
	_, err := m.Login(ctx, "second", "pw")
	require.NoError(t, err)

	close(g.release)
	res := <-done
	require.ErrorIs(t, res.err, common.ErrSessionSuperseded)

	got, _ := store.Read(ctx)
	assert.Equal(t, second, got)
}
