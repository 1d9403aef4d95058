package tracker

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"airchord/gesture"
)

func testServer(cfg Config) (*Server, *httptest.Server) {
	s := NewServer(cfg)
	return s, httptest.NewServer(s.Handler())
}

func postFrames(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/v1/frames", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post frames: %v", err)
	}
	return resp
}

func recvFrame(t *testing.T, ch <-chan gesture.Frame, within time.Duration) gesture.Frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(within):
		t.Fatalf("no frame within %s", within)
		return gesture.Frame{}
	}
}

func wristFrameJSON(handedness string, y float64) string {
	return fmt.Sprintf(`{"hands":[{"handedness":%q,"landmarks":[{"x":0.5,"y":%g,"z":0}]}]}`, handedness, y)
}

func TestServerAcceptsSingleFrame(t *testing.T) {
	assert := assert.New(t)
	s, srv := testServer(DefaultConfig())
	defer srv.Close()

	resp := postFrames(t, srv.URL, wristFrameJSON("Right", 0.25))
	defer resp.Body.Close()
	assert.Equal(http.StatusAccepted, resp.StatusCode)

	var reply map[string]int
	assert.NoError(json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(1, reply["accepted"])

	f := recvFrame(t, s.Frames(), time.Second)
	hand, ok := f.Hand(gesture.Right)
	assert.True(ok)
	assert.InDelta(0.25, hand.Wrist().Y, 1e-9)
	assert.NotZero(f.Seq)
	assert.False(f.At.IsZero())
}

func TestServerAcceptsBatch(t *testing.T) {
	assert := assert.New(t)
	s, srv := testServer(DefaultConfig())
	defer srv.Close()

	body := "[" + wristFrameJSON("Left", 0.1) + "," + wristFrameJSON("Left", 0.2) + "]"
	resp := postFrames(t, srv.URL, body)
	defer resp.Body.Close()
	assert.Equal(http.StatusAccepted, resp.StatusCode)

	var reply map[string]int
	assert.NoError(json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(2, reply["accepted"])

	first := recvFrame(t, s.Frames(), time.Second)
	second := recvFrame(t, s.Frames(), time.Second)
	h1, _ := first.Hand(gesture.Left)
	h2, _ := second.Hand(gesture.Left)
	assert.InDelta(0.1, h1.Wrist().Y, 1e-9)
	assert.InDelta(0.2, h2.Wrist().Y, 1e-9)
	assert.Greater(second.Seq, first.Seq)
}

func TestServerRejectsMalformed(t *testing.T) {
	assert := assert.New(t)
	_, srv := testServer(DefaultConfig())
	defer srv.Close()

	for _, body := range []string{"", "not json", `{"hands": 12}`, `[{"hands": "x"}]`} {
		resp := postFrames(t, srv.URL, body)
		resp.Body.Close()
		assert.Equal(http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func TestServerSessionAssignment(t *testing.T) {
	assert := assert.New(t)
	s, srv := testServer(DefaultConfig())
	defer srv.Close()

	// No session header: server assigns one and stamps the frame
	resp := postFrames(t, srv.URL, wristFrameJSON("Right", 0.5))
	resp.Body.Close()
	assigned := resp.Header.Get(SessionHeader)
	assert.NotEmpty(assigned)
	f := recvFrame(t, s.Frames(), time.Second)
	assert.Equal(assigned, f.Session)

	// Client echoes it back: server keeps it
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/frames", strings.NewReader(wristFrameJSON("Right", 0.5)))
	assert.NoError(err)
	req.Header.Set(SessionHeader, assigned)
	resp2, err := http.DefaultClient.Do(req)
	assert.NoError(err)
	resp2.Body.Close()
	assert.Equal(assigned, resp2.Header.Get(SessionHeader))
	f2 := recvFrame(t, s.Frames(), time.Second)
	assert.Equal(assigned, f2.Session)
}

func TestServerDropsWhenFull(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Buffer = 1
	s, srv := testServer(cfg)
	defer srv.Close()

	body := "[" + wristFrameJSON("Left", 0.1) + "," + wristFrameJSON("Left", 0.2) + "," + wristFrameJSON("Left", 0.3) + "]"
	resp := postFrames(t, srv.URL, body)
	defer resp.Body.Close()

	var reply map[string]int
	assert.NoError(json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(1, reply["accepted"])

	f := recvFrame(t, s.Frames(), time.Second)
	h, _ := f.Hand(gesture.Left)
	assert.InDelta(0.1, h.Wrist().Y, 1e-9)
	assert.Empty(s.Frames())
}

func TestServerSkipsUnknownHandedness(t *testing.T) {
	assert := assert.New(t)
	s, srv := testServer(DefaultConfig())
	defer srv.Close()

	body := `{"hands":[
		{"handedness":"Alien","landmarks":[{"x":0,"y":0,"z":0}]},
		{"handedness":"Left","landmarks":[{"x":0.5,"y":0.5,"z":0}]}
	]}`
	resp := postFrames(t, srv.URL, body)
	resp.Body.Close()

	f := recvFrame(t, s.Frames(), time.Second)
	assert.Len(f.Hands, 1)
	assert.Equal(gesture.Left, f.Hands[0].Side)
}

func TestServerHealth(t *testing.T) {
	assert := assert.New(t)
	_, srv := testServer(DefaultConfig())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/health")
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)

	var reply map[string]string
	assert.NoError(json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal("ok", reply["status"])
}

func TestServerAbsenceWatchdog(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.AbsentAfter = 40 * time.Millisecond
	s, srv := testServer(cfg)
	defer srv.Close()

	resp := postFrames(t, srv.URL, wristFrameJSON("Right", 0.5))
	resp.Body.Close()

	live := recvFrame(t, s.Frames(), time.Second)
	assert.Len(live.Hands, 1)

	// No further posts: the watchdog injects an empty frame
	empty := recvFrame(t, s.Frames(), time.Second)
	assert.Empty(empty.Hands)
	assert.Greater(empty.Seq, live.Seq)
}

func TestServerCORSPreflight(t *testing.T) {
	assert := assert.New(t)
	_, srv := testServer(DefaultConfig())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/frames", nil)
	assert.NoError(err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}
