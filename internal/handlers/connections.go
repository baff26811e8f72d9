package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// connectionInfo describes one in-flight request.
type connectionInfo struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remoteAddr"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StartedAt  time.Time `json:"startedAt"`
}

// connectionTracker keeps a uuid-keyed view of active requests and a count
// of everything served since start.
type connectionTracker struct {
	mu          sync.Mutex
	active      map[string]connectionInfo
	totalServed uint64
}

func newConnectionTracker() *connectionTracker {
	return &connectionTracker{active: make(map[string]connectionInfo)}
}

func (t *connectionTracker) add(r *http.Request) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.active[id] = connectionInfo{
		ID:         id,
		RemoteAddr: r.RemoteAddr,
		Method:     r.Method,
		Path:       r.URL.Path,
		StartedAt:  time.Now().UTC(),
	}
	t.totalServed++
	t.mu.Unlock()
	return id
}

func (t *connectionTracker) remove(id string) {
	t.mu.Lock()
	delete(t.active, id)
	t.mu.Unlock()
}

func (t *connectionTracker) snapshot() ([]connectionInfo, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conns := make([]connectionInfo, 0, len(t.active))
	for _, c := range t.active {
		conns = append(conns, c)
	}
	return conns, t.totalServed
}

// TrackConnections is middleware recording each request in the connection
// tracker for the /connections endpoint.
func (h *Handlers) TrackConnections(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := h.connections.add(r)
		defer h.connections.remove(id)
		next.ServeHTTP(w, r)
	})
}

// Connections returns the currently active requests and the total served.
func (h *Handlers) Connections(w http.ResponseWriter, r *http.Request) {
	active, total := h.connections.snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"active":      active,
		"activeCount": len(active),
		"totalServed": total,
	})
}
