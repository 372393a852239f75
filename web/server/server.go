package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// Server streams the frames of a running render to browsers
type Server struct {
	addr          string
	scene         *scene.Scene
	width, height int
	logger        *slog.Logger
	upgrader      websocket.Upgrader

	console   chan ConsoleMessage
	closing   chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	clients     map[*client]struct{}
	latestPNG   []byte
	latestFrame []byte // Encoded FrameMessage for late joiners
}

// FrameMessage is sent over the stream every time a frame is presented
type FrameMessage struct {
	Type      string `json:"type"`      // Always "frame"
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Finished  int    `json:"finished"`
	Workers   int    `json:"workers"`
	Done      bool   `json:"done"`
}

// consoleEnvelope tags a console message for the stream
type consoleEnvelope struct {
	Type string `json:"type"` // Always "console"
	ConsoleMessage
}

type client struct {
	send chan []byte
}

// NewServer creates a preview server for a render of sc at width x height.
// Call Start to listen, or mount Handler on an existing server.
func NewServer(addr string, sc *scene.Scene, width, height int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:    addr,
		scene:   sc,
		width:   width,
		height:  height,
		logger:  logger,
		console: make(chan ConsoleMessage, 50),
		closing: make(chan struct{}),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1 << 16,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	go s.streamConsoleMessages()
	return s
}

// Handler returns the HTTP routes of the preview
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/frame", s.handleFrame)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return mux
}

// Start listens on the server address until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Web preview shutdown", "error", err)
		}
	}()

	s.logger.Info("Starting web preview", "url", fmt.Sprintf("http://%s/api/frame", s.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web preview: %w", err)
	}
	return nil
}

// Close disconnects every stream client and stops console forwarding
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// Present encodes frame as PNG, keeps it for /api/frame and pushes it to every stream client
func (s *Server) Present(_ context.Context, frame *image.RGBA, progress renderer.Progress) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	message, err := json.Marshal(FrameMessage{
		Type:      "frame",
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Finished:  progress.Finished,
		Workers:   progress.Workers,
		Done:      progress.Done,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.latestPNG = buf.Bytes()
	s.latestFrame = message
	s.mu.Unlock()

	s.broadcast(message)
	return nil
}

// ConsoleHandler returns a log handler whose records are streamed to clients as console messages
func (s *Server) ConsoleHandler(level slog.Leveler) slog.Handler {
	return NewConsoleHandler(s.console, level)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// handleFrame serves the latest presented frame as PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := s.latestPNG
	s.mu.Unlock()

	if data == nil {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(data)
}

// handleStream upgrades to a websocket and forwards frame and console messages until either side closes
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{send: make(chan []byte, 16)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.latestFrame != nil {
		c.send <- s.latestFrame
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	// Reads only detect the peer going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case message := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-gone:
			return
		case <-s.closing:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
			return
		}
	}
}

// broadcast queues message for every client, dropping it for clients that are behind
func (s *Server) broadcast(message []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- message:
		default:
		}
	}
}

// streamConsoleMessages forwards console messages to stream clients until the server closes
func (s *Server) streamConsoleMessages() {
	for {
		select {
		case msg := <-s.console:
			data, err := json.Marshal(consoleEnvelope{Type: "console", ConsoleMessage: msg})
			if err != nil {
				continue
			}
			s.broadcast(data)
		case <-s.closing:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
