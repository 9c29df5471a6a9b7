package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/pimon/internal/sensor"
	state_new "github.com/temoto/pimon/internal/state/new"
)

const testConf = `
hardware {
  lcd {
    width  = 24
    height = 12
  }
}
`

func testRequest(t testing.TB, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	t.Parallel()

	ctx, _ := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)
	w := testRequest(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pimon server is running", w.Body.String())
}

func TestSensorEmpty(t *testing.T) {
	t.Parallel()

	ctx, _ := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)
	w := testRequest(t, s, http.MethodGet, "/sensor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error": "no sensor data available"}`, w.Body.String())
}

func TestSensorAfterTick(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	g.Store.CommitTick(sensor.Reading{Temperature: 21.5, Humidity: 55.0, Timestamp: 1700000000}, "frame")
	s := NewServer(ctx)
	w := testRequest(t, s, http.MethodGet, "/sensor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"temperature": 21.5, "humidity": 55.0, "timestamp": 1700000000}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	g.Store.CommitTick(sensor.Reading{Temperature: 21.5, Humidity: 55.0, Timestamp: 1700000000}, "frame")
	g.Store.SetLed(true)
	s := NewServer(ctx)
	w := testRequest(t, s, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var st struct {
		UptimeSeconds  *int64 `json:"uptime_seconds"`
		Led            bool   `json:"led_status"`
		LastReading    *sensor.Reading `json:"last_sensor_reading"`
		DisplayContent string `json:"display_content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.NotNil(t, st.UptimeSeconds)
	assert.True(t, *st.UptimeSeconds >= 0)
	assert.True(t, st.Led)
	require.NotNil(t, st.LastReading)
	assert.Equal(t, 21.5, st.LastReading.Temperature)
	assert.Equal(t, "frame", st.DisplayContent)
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	g.Store.CommitTick(sensor.Reading{Timestamp: 1}, "content-here")
	s := NewServer(ctx)
	w := testRequest(t, s, http.MethodGet, "/display", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"display_content": "content-here", "mode": "simulation"}`, w.Body.String())
}

func TestLedSet(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)

	w := testRequest(t, s, http.MethodPost, "/led", `{"state": true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"led_state": true, "success": true}`, w.Body.String())
	assert.True(t, g.Led.Get())
	assert.True(t, g.Store.Led())

	w = testRequest(t, s, http.MethodPost, "/led", `{"state": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"led_state": false, "success": true}`, w.Body.String())
	assert.False(t, g.Led.Get())
	assert.False(t, g.Store.Led())
}

func TestLedBadBody(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)

	for _, body := range []string{
		`{"state": "on"}`,
		`{"state": 1}`,
		`{}`,
		`not json`,
		``,
	} {
		w := testRequest(t, s, http.MethodPost, "/led", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body=%q", body)
		assert.Contains(t, w.Body.String(), `"success":false`, "body=%q", body)
	}
	assert.False(t, g.Led.Get())
}

type failLed struct{}

func (failLed) Set(bool) error { return errors.New("gpio write failed") }
func (failLed) Get() bool      { return false }

func TestLedHardwareFailure(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	g.Led = failLed{}
	s := NewServer(ctx)

	w := testRequest(t, s, http.MethodPost, "/led", `{"state": true}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.False(t, g.Store.Led())
}

func TestLedStopsBlink(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)
	select {
	case <-g.BlinkStopChan():
		t.Fatal("blink stop before any led write")
	default:
	}
	testRequest(t, s, http.MethodPost, "/led", `{"state": true}`)
	select {
	case <-g.BlinkStopChan():
	case <-time.After(time.Second):
		t.Fatal("blink stop not signalled after led write")
	}
}

func TestCorsAnyOrigin(t *testing.T) {
	t.Parallel()

	ctx, _ := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebsocketBroadcast(t *testing.T) {
	t.Parallel()

	ctx, _ := state_new.NewTestContext(t, testConf)
	s := NewServer(ctx)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// handler registers the client after the handshake, wait for it
	deadline := time.Now().Add(3 * time.Second)
	for s.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("ws client not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sent := sensor.Reading{Temperature: 25.0, Humidity: 60.0, Timestamp: 1700000001}
	s.Broadcast(sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var got sensor.Reading
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent, got)
}
