package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager fans tree mutation events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // tree name -> set of channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(tree string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[tree]; !ok {
		sm.subscribers[tree] = make(map[chan<- string]struct{})
	}
	sm.subscribers[tree][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[tree]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, tree)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(tree string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[tree] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "tree", tree)
		}
	}
}

// Send broadcasts e to the subscribers of tree as JSON.
func (sm *StreamManager) Send(tree string, e domain.MutationEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		sm.logger.Error("SSE: encode mutation", "tree", tree, "err", err)
		return
	}
	sm.Broadcast(tree, string(payload))
}

// Hooks broadcasts every mutation of the named tree as JSON.
func (sm *StreamManager) Hooks(tree string) domain.Hooks {
	return domain.Hooks{
		OnMutation: func(e domain.MutationEvent) {
			sm.Send(tree, e)
		},
	}
}

// subscribeEvents handles GET /trees/{tree}/events (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	name := chi.URLParam(r, "tree")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(name)
	defer cancel()
	s.logger.Info("SSE: Subscribing to tree mutations", "tree", name)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "tree", name)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: mutation\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
