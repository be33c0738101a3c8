// Package preview serves a built site over HTTP and rebuilds it when
// source files change, with an optional fixed-interval rebuild as a
// safety net for missed filesystem events.
package preview

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/margay/margay/internal/errs"
	"github.com/margay/margay/internal/site"
)

// debounceWindow coalesces bursts of filesystem events (editors write
// several times per save) into one rebuild.
const debounceWindow = 300 * time.Millisecond

// Options configures a preview server.
type Options struct {
	Source  *site.Source
	Builder *site.Builder
	OutDir  string
	Addr    string

	// RebuildEvery adds a scheduled rebuild when > 0.
	RebuildEvery time.Duration
}

// Server watches, rebuilds and serves one site.
type Server struct {
	opts    Options
	metrics *metrics

	mu        sync.RWMutex
	lastError error
}

// New validates opts and returns an unstarted server.
func New(opts Options) (*Server, error) {
	if opts.Source == nil || opts.Builder == nil {
		return nil, errs.New(errs.CategoryConfig, "preview requires a source and a builder")
	}
	if opts.OutDir == "" {
		return nil, errs.New(errs.CategoryConfig, "preview requires an output directory")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	return &Server{opts: opts, metrics: newMetrics()}, nil
}

// Run builds once, then serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, errs.CategoryIO, "create file watcher")
	}
	defer func() { _ = watcher.Close() }()
	if err := watchRecursive(watcher, s.opts.Source.Dir); err != nil {
		return err
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := newDebouncer(rebuildReq)

	var scheduler gocron.Scheduler
	if s.opts.RebuildEvery > 0 {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return errs.Wrap(err, errs.CategoryConfig, "create scheduler")
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(s.opts.RebuildEvery),
			gocron.NewTask(func() { trigger() }),
			gocron.WithName("interval-rebuild"),
		)
		if err != nil {
			return errs.Wrap(err, errs.CategoryConfig, "schedule interval rebuild")
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	httpServer := &http.Server{Addr: s.opts.Addr, Handler: s.routes()}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("preview listening", "addr", s.opts.Addr, "dir", s.opts.OutDir)
		serveErr <- httpServer.ListenAndServe()
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
			return nil

		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errs.Wrap(err, errs.CategoryIO, "preview server")

		case ev, ok := <-watcher.Events:
			if !ok {
				continue
			}
			s.handleFileEvent(watcher, ev, trigger)

		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				slog.Warn("watcher error", "error", err)
			}

		case <-rebuildReq:
			s.rebuild(ctx)
		}
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		err := s.lastError
		s.mu.RUnlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", http.FileServer(http.Dir(s.opts.OutDir)))
	return mux
}

func (s *Server) rebuild(ctx context.Context) {
	start := time.Now()
	res, err := s.opts.Builder.Build(ctx, s.opts.Source, s.opts.OutDir)
	s.metrics.rebuildsTotal.Inc()
	s.metrics.rebuildSeconds.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()

	if err != nil {
		s.metrics.rebuildsFailedTotal.Inc()
		slog.Error("rebuild failed", "error", err)
		return
	}
	s.metrics.docsRendered.Set(float64(res.Rendered + res.Cached))
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	// New directories must be watched before anything inside them changes.
	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			_ = watchRecursive(watcher, ev.Name)
		}
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		trigger()
	}
}

// newDebouncer returns a trigger that forwards at most one request per
// debounce window to req.
func newDebouncer(req chan<- struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
}

func watchRecursive(w *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		return errs.Wrap(err, errs.CategoryIO, "watch source tree")
	}
	return nil
}
