package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorsu/tiktalk/internal/app"
	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/moderation"
	"github.com/sorsu/tiktalk/internal/storage"
)

type wsHarness struct {
	ctl  *Controller
	bans *moderation.BanList
	srv  *httptest.Server
}

func newWSHarness(t *testing.T) *wsHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.New(afero.NewMemMapFs(), "data")
	require.NoError(t, store.Init())
	bans := moderation.NewBanList(store)
	gate := moderation.NewGate(bans, moderation.NewReports(store))
	ctl := NewController(app.NewOrchestrator(gate), 32768, time.Minute, nil)

	r := gin.New()
	r.GET("/api/ws", func(c *gin.Context) {
		if token, err := c.Cookie("ct"); err == nil {
			c.Set("client_token", token)
		}
		ctl.Handle(c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsHarness{ctl: ctl, bans: bans, srv: srv}
}

func (h *wsHarness) dial(t *testing.T, cookieToken string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/api/ws"
	header := http.Header{}
	if cookieToken != "" {
		header.Set("Cookie", "ct="+cookieToken)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func sendJoin(t *testing.T, conn *websocket.Conn, nickname, campus string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "user:join",
		"data": map[string]string{"nickname": nickname, "campus": campus},
	}))
}

func TestSharedCookieConnectionsAreIndependent(t *testing.T) {
	h := newWSHarness(t)

	// Two tabs of one browser share the ct cookie.
	connA := h.dial(t, "shared-token")
	connB := h.dial(t, "shared-token")

	sendJoin(t, connA, "juan_dc", "bulan")
	require.Eventually(t, func() bool {
		return h.ctl.Orch.Registry.Size() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Closing the never-joined second connection must not tear down the
	// first one's session.
	require.NoError(t, connB.Close())
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, h.ctl.Orch.Registry.Size())

	// The first connection is still live: history + joined arrived.
	assert.Equal(t, core.EvHistory, readFrame(t, connA).Type)
	assert.Equal(t, core.EvJoined, readFrame(t, connA).Type)
}

func TestSharedCookieConnectionsCanBothJoin(t *testing.T) {
	h := newWSHarness(t)

	connA := h.dial(t, "shared-token")
	connB := h.dial(t, "shared-token")

	sendJoin(t, connA, "juan_dc", "bulan")
	sendJoin(t, connB, "maria", "bulan")

	// Distinct per-connection identities, so neither join collides.
	require.Eventually(t, func() bool {
		return h.ctl.Orch.Registry.Size() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBannedOriginRejectedBeforeRegistration(t *testing.T) {
	h := newWSHarness(t)
	require.NoError(t, h.bans.Add("127.0.0.1", domain.Ban{
		Type:     domain.BanPermanent,
		Reason:   "abuse",
		BannedBy: "admin",
	}))

	conn := h.dial(t, "")

	// First and only frame is the ban notice.
	env := readFrame(t, conn)
	assert.Equal(t, core.EvBanned, env.Type)
	var status domain.BanStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Banned)
	assert.Equal(t, domain.BanPermanent, status.Type)

	// The connection is cut; a join attempt goes nowhere and no session
	// is ever registered.
	_ = conn.WriteJSON(map[string]any{
		"type": "user:join",
		"data": map[string]string{"nickname": "juan_dc", "campus": "bulan"},
	})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, h.ctl.Orch.Registry.Size())
}
