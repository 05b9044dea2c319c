package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// LayoutFeed relays widget layout changes to open dashboards of the same viewer.
type LayoutFeed struct {
	mu   sync.RWMutex
	subs map[string]map[chan WidgetEvent]struct{}
}

var _ RefreshHook = (*LayoutFeed)(nil)

// NewLayoutFeed creates an empty feed.
func NewLayoutFeed() *LayoutFeed {
	return &LayoutFeed{subs: make(map[string]map[chan WidgetEvent]struct{})}
}

// WidgetUpdated delivers event to the subscribers of event.UserID. Full buffers drop the event.
func (f *LayoutFeed) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe listens to the layout events of userID.
func (f *LayoutFeed) Subscribe(userID string) (<-chan WidgetEvent, func()) {
	ch := make(chan WidgetEvent, 4)
	f.mu.Lock()
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[chan WidgetEvent]struct{})
	}
	f.subs[userID][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[userID], ch)
			if len(f.subs[userID]) == 0 {
				delete(f.subs, userID)
			}
			close(ch)
		})
	}
}

// Subscribers reports how many listeners userID has.
func (f *LayoutFeed) Subscribers(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[userID])
}

// ServeSSE streams the layout events of the "user" query parameter.
func (f *LayoutFeed) ServeSSE(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, ErrViewerRequired.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	events, cancel := f.Subscribe(userID)
	defer cancel()
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: layout\ndata: %s\n\n", payload); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
