package newsapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Newsroom-Apps/internal/news"
)

// Newsroom is the registry the HTTP surface drives. *newswire.Wire satisfies it.
type Newsroom interface {
	AddSubscriber(s news.Subscriber) error
	RemoveSubscriber(s news.Subscriber) error
	Publish(content string) error
	Latest() (string, bool)
	Subscribers() []news.Subscriber
}

type Server struct {
	room     Newsroom
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	buffer   int
}

type Option func(*Server)

// WithGatherer exposes the given registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStreamBuffer sets how many deliveries a stream client may lag behind
// before further deliveries to it are dropped.
func WithStreamBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.buffer = n
		}
	}
}

func NewServer(room Newsroom, opts ...Option) *Server {
	s := &Server{
		room:   room,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		buffer: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Register(r chi.Router) {
	r.Route("/api/news", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, _ *http.Request) { writeNoContent(w) })
		r.Post("/publish", s.handlePublish)
		r.Get("/latest", s.handleLatest)
		r.Get("/subscribers", s.handleSubscribers)
		r.Get("/stream", s.handleStream)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}
	if err := s.room.Publish(*req.Content); err != nil {
		// Local subscribers already received the content; only the announce failed.
		s.logger.Error("publish announce failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	content, present := s.room.Latest()
	writeJSON(w, http.StatusOK, map[string]any{"content": content, "present": present})
}

func (s *Server) handleSubscribers(w http.ResponseWriter, _ *http.Request) {
	members := s.room.Subscribers()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": names})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	sub := newStreamSubscriber(r.URL.Query().Get("name"), s.buffer)
	if err := s.room.AddSubscriber(sub); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, news.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	defer func() {
		if err := s.room.RemoveSubscriber(sub); err != nil {
			s.logger.Error("stream unsubscribe failed", "name", sub.Name(), "error", err)
		}
		s.logger.Info("stream closed", "name", sub.Name(), "dropped", sub.Dropped())
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case content := <-sub.ch:
			b, _ := json.Marshal(delivery{Subscriber: sub.Name(), Content: content})
			if _, err := w.Write([]byte("event: news\ndata: " + string(b) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type delivery struct {
	Subscriber string `json:"subscriber"`
	Content    string `json:"content"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeNoContent(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}
