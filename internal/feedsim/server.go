package feedsim

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/crux/pkg/logger"
)

// Feed server timeout constants.
const (
	feedReadTimeout       = 5 * time.Second
	feedWriteTimeout      = 5 * time.Second
	feedReadHeaderTimeout = 2 * time.Second
)

// FeedServer serves the upstream provider surface over generated games:
// GET /games/live and GET /games/{id}/state.
type FeedServer struct {
	mu    sync.RWMutex
	games map[string]Snapshot
	srv   *http.Server
}

// NewFeedServer creates a feed server over the given games.
func NewFeedServer(games map[string]Snapshot) *FeedServer {
	return &FeedServer{games: games}
}

// SetGame adds or replaces one game snapshot.
func (f *FeedServer) SetGame(id string, s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[id] = s
}

// GameIDs lists the ids of all served games.
func (f *FeedServer) GameIDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]string, 0, len(f.games))
	for id := range f.games {
		ids = append(ids, id)
	}
	return ids
}

// Start begins serving on addr. It returns immediately; Stop shuts down.
func (f *FeedServer) Start(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/games/live", f.handleLive)
	mux.HandleFunc("/games/", f.handleState)

	f.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       feedReadTimeout,
		WriteTimeout:      feedWriteTimeout,
		ReadHeaderTimeout: feedReadHeaderTimeout,
	}

	go func() {
		logger.Get().Info(ctx, "synthetic feed listening", logger.String("addr", addr))
		if err := f.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Error(ctx, "synthetic feed failed", logger.Error(err))
		}
	}()
}

// Stop shuts the feed server down.
func (f *FeedServer) Stop(ctx context.Context) {
	if f.srv != nil {
		_ = f.srv.Shutdown(ctx)
	}
}

func (f *FeedServer) handleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string][]string{"event_ids": f.GameIDs()})
}

func (f *FeedServer) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/games/"), "/state")

	f.mu.RLock()
	snapshot, ok := f.games[id]
	f.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(snapshot)
}
