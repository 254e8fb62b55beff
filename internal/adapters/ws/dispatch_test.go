package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorsu/tiktalk/internal/app"
	"github.com/sorsu/tiktalk/internal/core"
	"github.com/sorsu/tiktalk/internal/moderation"
	"github.com/sorsu/tiktalk/internal/storage"
)

func newTestController(t *testing.T, reportLimiter *IPRateLimiter) *Controller {
	t.Helper()
	store := storage.New(afero.NewMemMapFs(), "data")
	require.NoError(t, store.Init())
	gate := moderation.NewGate(moderation.NewBanList(store), moderation.NewReports(store))
	return NewController(app.NewOrchestrator(gate), 32768, time.Minute, reportLimiter)
}

// testConn builds a wsConn detached from any socket; dispatch only
// touches the send channel.
func testConn() *wsConn {
	return &wsConn{send: make(chan core.Event, 16)}
}

func drain(c *wsConn) []core.Event {
	var out []core.Event
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func frame(t *testing.T, typ string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	b, err := json.Marshal(envelope{Type: typ, Data: raw})
	require.NoError(t, err)
	return b
}

func errorMessages(events []core.Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Type == core.EvError {
			out = append(out, ev.Data.(core.ErrorPayload).Message)
		}
	}
	return out
}

func TestDispatchJoinAndSend(t *testing.T) {
	ctl := newTestController(t, nil)
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "user:join", map[string]string{
		"nickname": "juan_dc",
		"campus":   "bulan",
	}))
	events := drain(c)
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, core.EvHistory)
	assert.Contains(t, types, core.EvJoined)

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "message:send", map[string]string{"content": "hello"}))
	events = drain(c)
	require.Len(t, events, 1)
	assert.Equal(t, core.EvMessage, events[0].Type)
}

func TestDispatchRequiresJoin(t *testing.T) {
	ctl := newTestController(t, nil)
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "message:send", map[string]string{"content": "hello"}))
	assert.Equal(t, []string{"Not authenticated"}, errorMessages(drain(c)))
}

func TestDispatchJoinValidation(t *testing.T) {
	ctl := newTestController(t, nil)
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "user:join", map[string]string{"nickname": "juan_dc"}))
	assert.Equal(t, []string{"Nickname and campus required"}, errorMessages(drain(c)))
}

func TestDispatchMalformedPayload(t *testing.T) {
	ctl := newTestController(t, nil)
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, []byte(`{"type":"message:send","data":"not an object"}`))
	assert.Equal(t, []string{"Malformed payload"}, errorMessages(drain(c)))
}

func TestDispatchIgnoresUnknownAndBadFrames(t *testing.T) {
	ctl := newTestController(t, nil)
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, []byte(`not json at all`))
	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "no:such:event", map[string]string{}))
	assert.Empty(t, drain(c))
}

func TestDispatchReportRateLimit(t *testing.T) {
	ctl := newTestController(t, NewIPRateLimiter(1, time.Hour))
	c := testConn()

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "user:join", map[string]string{
		"nickname": "juan_dc",
		"campus":   "bulan",
	}))
	drain(c)

	report := map[string]string{"messageId": "", "reason": "spam"}
	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "report:submit", report))
	events := drain(c)
	require.Len(t, events, 1)
	assert.Equal(t, core.EvReportOK, events[0].Type)

	ctl.dispatch("sid-1", "10.0.0.1", c, frame(t, "report:submit", report))
	assert.Equal(t, []string{"You have reached the maximum number of reports per hour."}, errorMessages(drain(c)))
}
