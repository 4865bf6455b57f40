package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/navigation"
	"github.com/foxseedlab/modconsole/internal/notice"
	"github.com/foxseedlab/modconsole/internal/search"
	"github.com/foxseedlab/modconsole/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var errUnknownChannel = errors.New("channel is not in this view")

// Server exposes mounted channel list sessions ("views") over HTTP and streams
// their state, navigation and notices over websockets.
type Server struct {
	manager    *session.Manager
	hub        *Hub
	gatherer   prometheus.Gatherer
	viewsGauge prometheus.Gauge
	engine     *gin.Engine

	mu    sync.RWMutex
	views map[string]*view
}

type view struct {
	id          string
	session     *session.Session
	unsubscribe func()
}

type mountRequest struct {
	Kind  string `json:"kind" binding:"required"`
	Query string `json:"query"`
}

type actionRequest struct {
	URL      string   `json:"url"`
	URLs     []string `json:"urls"`
	Selected bool     `json:"selected"`
	Option   string   `json:"option"`
	Query    string   `json:"query"`
}

func NewServer(manager *session.Manager, hub *Hub, reg *prometheus.Registry, development bool) *Server {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		manager:  manager,
		hub:      hub,
		gatherer: reg,
		viewsGauge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "modconsole",
			Name:      "console_views",
			Help:      "Channel list views currently mounted.",
		}),
		views: make(map[string]*view),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	views := r.Group("/views")
	views.POST("", s.handleMount)
	views.DELETE("/:id", s.handleUnmount)
	views.GET("/:id/state", s.handleState)
	views.POST("/:id/actions/:action", s.handleAction)
	views.POST("/:id/delete", s.handleDelete)
	views.GET("/:id/stream", s.handleStream)
	return r
}

// Run serves on addr until ctx is done, then unmounts every view.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: readHeaderTimeout}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("console listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.unmountAll()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	n := len(s.views)
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "views": n, "sessions": s.manager.Active()})
}

func (s *Server) handleMount(c *gin.Context) {
	var req mountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mount request"})
		return
	}

	id := uuid.NewString()
	sess, err := s.manager.Mount(c.Request.Context(), session.MountOptions{
		Kind:     channel.Kind(req.Kind),
		RawQuery: req.Query,
		Router: navigation.RouterFunc(func(location string) {
			s.hub.Publish(id, FrameNavigate, NavigateFrame{Location: location})
		}),
		Notifier: notice.NotifierFunc(func(_ context.Context, n notice.Notice) error {
			s.hub.Publish(id, FrameNotice, n)
			return nil
		}),
		ResetLiveMessages: func(_ context.Context, ch channel.Channel) {
			s.hub.Publish(id, FrameLiveReset, LiveResetFrame{ChannelURL: channel.URLOf(ch)})
		},
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := &view{id: id, session: sess}
	v.unsubscribe = sess.Subscribe(func(st session.State) {
		s.hub.Publish(id, FrameState, stateView(st))
	})

	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()
	s.viewsGauge.Inc()

	slog.Info("view mounted", "view_id", id, "kind", req.Kind)
	c.JSON(http.StatusCreated, gin.H{"id": id, "state": stateView(sess.State())})
}

func (s *Server) handleUnmount(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return
	}
	s.unmount(v)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleState(c *gin.Context) {
	v, ok := s.lookupView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateView(v.session.State()))
}

type actionFunc func(ctx context.Context, sess *session.Session, req actionRequest) error

var actions = map[string]actionFunc{
	"set_selection": func(_ context.Context, sess *session.Session, req actionRequest) error {
		chs, err := listed(sess.State(), req.URLs)
		if err != nil {
			return err
		}
		sess.SetSelection(chs)
		return nil
	},
	"toggle_selection": func(_ context.Context, sess *session.Session, req actionRequest) error {
		chs, err := listed(sess.State(), []string{req.URL})
		if err != nil {
			return err
		}
		sess.ToggleSelection(chs[0], req.Selected)
		return nil
	},
	"change_search_option": func(_ context.Context, sess *session.Session, req actionRequest) error {
		return sess.ChangeSearchOption(search.Option(req.Option))
	},
	"change_search_query": func(_ context.Context, sess *session.Session, req actionRequest) error {
		sess.ChangeSearchQuery(req.Query)
		return nil
	},
	"open": func(ctx context.Context, sess *session.Session, req actionRequest) error {
		st := sess.State()
		if st.Current != nil && channel.URLOf(st.Current) == req.URL {
			sess.Open(ctx, st.Current)
			return nil
		}
		chs, err := listed(st, []string{req.URL})
		if err != nil {
			return err
		}
		sess.Open(ctx, chs[0])
		return nil
	},
}

// simpleActions take no arguments.
var simpleActions = map[string]func(session.Actions){
	"submit_search":  session.Actions.SubmitSearch,
	"clear_search":   session.Actions.ClearSearch,
	"focus_search":   session.Actions.FocusSearch,
	"blur_search":    session.Actions.BlurSearch,
	"load_more":      session.Actions.LoadMore,
	"return_to_list": session.Actions.ReturnToList,
}

func (s *Server) handleAction(c *gin.Context) {
	v, ok := s.lookupView(c)
	if !ok {
		return
	}
	name := c.Param("action")
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action request"})
		return
	}

	if fn, ok := simpleActions[name]; ok {
		fn(v.session)
	} else if fn, ok := actions[name]; ok {
		if err := fn(c.Request.Context(), v.session, req); err != nil {
			respondActionError(c, err)
			return
		}
	} else {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown action"})
		return
	}
	c.JSON(http.StatusOK, stateView(v.session.State()))
}

func (s *Server) handleDelete(c *gin.Context) {
	v, ok := s.lookupView(c)
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delete request"})
		return
	}

	st := v.session.State()
	targets := st.Selected
	if len(req.URLs) > 0 {
		var err error
		if targets, err = listed(st, req.URLs); err != nil {
			respondActionError(c, err)
			return
		}
	}
	if len(targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to delete"})
		return
	}
	if err := v.session.Delete(c.Request.Context(), targets); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(targets), "state": stateView(v.session.State())})
}

func (s *Server) lookupView(c *gin.Context) (*view, bool) {
	s.mu.RLock()
	v, ok := s.views[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
	}
	return v, ok
}

func (s *Server) unmount(v *view) {
	v.unsubscribe()
	s.manager.Unmount(v.session)
	s.hub.CloseView(v.id)
	s.viewsGauge.Dec()
	slog.Info("view unmounted", "view_id", v.id, "kind", v.session.Kind())
}

func (s *Server) unmountAll() {
	s.mu.Lock()
	views := make([]*view, 0, len(s.views))
	for id, v := range s.views {
		views = append(views, v)
		delete(s.views, id)
	}
	s.mu.Unlock()
	for _, v := range views {
		s.unmount(v)
	}
}

// listed resolves urls against the channels of st, in order.
func listed(st session.State, urls []string) ([]channel.Channel, error) {
	byURL := make(map[string]channel.Channel, len(st.Channels))
	for _, c := range st.Channels {
		byURL[channel.URLOf(c)] = c
	}
	out := make([]channel.Channel, 0, len(urls))
	for _, u := range urls {
		c, ok := byURL[u]
		if !ok {
			return nil, errUnknownChannel
		}
		out = append(out, c)
	}
	return out, nil
}

func respondActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnknownChannel):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, search.ErrUnknownOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
