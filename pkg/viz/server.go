package viz

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	mu             sync.RWMutex
	producers      map[string]Producer
	images         map[string]*ImageContainer
	handlers       map[string]http.Handler
	gatherer       prometheus.Gatherer
	srv            *http.Server
	updateInterval time.Duration
	logger         zerolog.Logger
}

type ServerOption func(s *Server)

// WithGatherer serves the given registry at /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(port int, updateInterval time.Duration, opts ...ServerOption) *Server {
	s := &Server{
		producers:      make(map[string]Producer),
		images:         make(map[string]*ImageContainer),
		handlers:       make(map[string]http.Handler),
		srv:            &http.Server{Addr: fmt.Sprintf(":%d", port)},
		updateInterval: updateInterval,
		logger:         log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Register(p Producer) {
	s.mu.Lock()
	s.producers[p.Name()] = p
	s.mu.Unlock()
}

// Handle mounts h for GET requests on path. It must be called before Run.
func (s *Server) Handle(path string, h http.Handler) {
	s.mu.Lock()
	s.handlers[path] = h
	s.mu.Unlock()
}

func (s *Server) sortedProducers() []Producer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]Producer, 0, len(s.producers))
	for _, p := range s.producers {
		ret = append(ret, p)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name() < ret[j].Name() })
	return ret
}

// Refresh renders every producer once.
func (s *Server) Refresh() {
	for _, p := range s.sortedProducers() {
		img, err := p.GetImage()
		if err != nil {
			s.logger.Warn().Err(err).Str("plot", p.Name()).Msg("failed to render plot")
			continue
		}
		if img == nil {
			continue
		}
		s.mu.Lock()
		s.images[img.name] = img
		s.mu.Unlock()
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	producers := s.sortedProducers()

	w.Header().Add("Content-Type", "text/html")
	fmt.Fprintf(w, `<html><head><title>FDX-B reader</title>
<script type="text/javascript">
	window.onload = function() {
		var imgs = document.getElementsByTagName('img');
		setInterval(function() {
			for (var i = 0; i < imgs.length; i++) {
				imgs[i].src = imgs[i].src.split("?")[0] + "?" + new Date().getTime();
			}
		}, %d);
	}
</script></head>`, s.updateInterval.Milliseconds())
	fmt.Fprint(w, `<body style='background-color: black; color: white'>`)

	for _, p := range producers {
		name := html.EscapeString(p.Name())
		fmt.Fprintf(w, `<div><p>%s</p><img src="/img/%s?%d" /></div>`,
			html.EscapeString(p.Summary()), name, time.Now().UnixMicro())
	}
	fmt.Fprint(w, `</body></html>`)
}

func (s *Server) image(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	s.mu.RLock()
	img, ok := s.images[params.ByName("name")]
	s.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Add("Content-Type", "image/png")
	w.Write(img.data)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/", s.index)
	router.GET("/img/:name", s.image)

	if s.gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.mu.RLock()
	for path, h := range s.handlers {
		router.Handler(http.MethodGet, path, h)
	}
	s.mu.RUnlock()

	return router
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				s.Stop(shutdownCtx)
				cancel()
				return
			case <-time.After(s.updateInterval):
				s.Refresh()
			}
		}
	}()

	s.srv.Handler = s.Handler()
	s.logger.Info().Str("addr", s.srv.Addr).Msg("status server listening")

	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
