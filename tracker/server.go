package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"airchord/debug"
	"airchord/gesture"
)

// SessionHeader carries the client's session ID. The server assigns
// one on the first request and the client echoes it back.
const SessionHeader = "X-Session"

// Wire model for the hand-tracking client, mirroring the MediaPipe
// Hands result shape
type wireLandmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireHand struct {
	Handedness string         `json:"handedness"`
	Landmarks  []wireLandmark `json:"landmarks"`
}

type wireFrame struct {
	TS    int64      `json:"ts,omitempty"` // client clock, millis; informational
	Hands []wireHand `json:"hands"`
}

// Config tunes the ingest server
type Config struct {
	// Addr is the listen address, e.g. ":8433"
	Addr string
	// Buffer is the frame channel capacity; frames beyond it drop
	Buffer int
	// AbsentAfter is how long the input may stall before the server
	// injects an empty frame so the engine releases everything
	AbsentAfter time.Duration
}

// DefaultConfig returns the standard ingest tuning
func DefaultConfig() Config {
	return Config{
		Addr:        ":8433",
		Buffer:      64,
		AbsentAfter: 500 * time.Millisecond,
	}
}

// Server accepts landmark frames from the hand-tracking client over
// HTTP and republishes them on a channel the engine consumes. The
// reference client is a browser page on another origin, so responses
// carry CORS headers.
type Server struct {
	cfg Config

	frames   chan gesture.Frame
	seq      atomic.Uint64
	watchdog func(func())
}

// NewServer builds an ingest server
func NewServer(cfg Config) *Server {
	if cfg.Buffer < 1 {
		cfg.Buffer = 1
	}
	if cfg.AbsentAfter <= 0 {
		cfg.AbsentAfter = DefaultConfig().AbsentAfter
	}
	return &Server{
		cfg:      cfg,
		frames:   make(chan gesture.Frame, cfg.Buffer),
		watchdog: debounce.New(cfg.AbsentAfter),
	}
}

// Frames returns the channel the engine reads
func (s *Server) Frames() <-chan gesture.Frame {
	return s.frames
}

// Handler returns the routed, CORS-wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/v1/frames", s.handleFrames).Methods("POST")
	router.HandleFunc("/v1/health", s.handleHealth).Methods("GET")

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
	}).Handler(router)
}

// Run serves until the context ends
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	debug.Log("TRACKER", "listening on %s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	session := r.Header.Get(SessionHeader)
	if session == "" {
		session = uuid.NewString()
		debug.Log("TRACKER", "new session %s from %s", session, r.RemoteAddr)
	}
	w.Header().Set(SessionHeader, session)

	batch, err := decodeFrames(r.Body)
	if err != nil {
		http.Error(w, "malformed frame batch", http.StatusBadRequest)
		return
	}

	now := time.Now()
	accepted := 0
	for _, wf := range batch {
		if s.offer(wf.toFrame(session, now, s.seq.Add(1))) {
			accepted++
		}
	}

	// Feed the dead-man switch: if posts stop, an empty frame follows
	s.watchdog(s.emitAbsence)

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{"accepted": accepted})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// offer pushes a frame without ever blocking the request handler; a
// slow engine costs stale frames, not latency
func (s *Server) offer(f gesture.Frame) bool {
	select {
	case s.frames <- f:
		return true
	default:
		debug.LogEvery(30, "TRACKER", "frame buffer full, dropping seq=%d", f.Seq)
		return false
	}
}

// emitAbsence injects an empty frame after the input stalls, so hands
// that silently vanished still release their voices
func (s *Server) emitAbsence() {
	debug.Log("TRACKER", "input stalled for %s, emitting absence", s.cfg.AbsentAfter)
	s.offer(gesture.Frame{
		Seq: s.seq.Add(1),
		At:  time.Now(),
	})
}

// maxBody caps a frame post; a full batch of two-hand frames is a few
// kilobytes
const maxBody = 1 << 20

// decodeFrames accepts either a single frame object or an array
func decodeFrames(r io.Reader) ([]wireFrame, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	if body[0] == '[' {
		var batch []wireFrame
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var wf wireFrame
	if err := json.Unmarshal(body, &wf); err != nil {
		return nil, err
	}
	return []wireFrame{wf}, nil
}

// toFrame converts wire hands into the engine's frame model
func (wf wireFrame) toFrame(session string, at time.Time, seq uint64) gesture.Frame {
	f := gesture.Frame{
		Seq:     seq,
		At:      at,
		Session: session,
	}
	for _, wh := range wf.Hands {
		side := gesture.Side(wh.Handedness)
		if side != gesture.Left && side != gesture.Right {
			continue
		}
		h := gesture.Hand{Side: side, Landmarks: make([]gesture.Landmark, len(wh.Landmarks))}
		for i, lm := range wh.Landmarks {
			h.Landmarks[i] = gesture.Landmark{X: lm.X, Y: lm.Y, Z: lm.Z}
		}
		f.Hands = append(f.Hands, h)
	}
	return f
}
