package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/usergraph/internal/config"
	"github.com/SergeyParamoshkin/usergraph/internal/diag"
	"github.com/SergeyParamoshkin/usergraph/internal/logger"
	"github.com/SergeyParamoshkin/usergraph/internal/metrics"
	"github.com/SergeyParamoshkin/usergraph/internal/user"
)

var helpText = strings.Join([]string{
	"Welcome to my server. Go to the URL you are interested in)",
	"",
	"Available URLs:",
	"",
	"1. /getuserlist",
	"2. /getuserbyid?id=<user_id>",
	"3. /updateuser?id=<user_id>&status=<new_status>&friends=<friend_id1>,<friend_id2>...",
	"4. /deleteuser?id=<user_id>",
	"5. /createuser?id=<user_id>&firstname=<first_name>&lastname=<last_name>&status=<status>",
	"6. /getsync",
	"7. /getasync",
	"8. /osinfo",
}, "\n")

type App struct {
	sugarLogger *zap.SugaredLogger
	config      *config.Config
	store       *user.Store
	metrics     *metrics.Metrics
}

func NewApp(cfg *config.Config, sugar *zap.SugaredLogger, store *user.Store, m *metrics.Metrics) *App {
	return &App{
		sugarLogger: sugar,
		config:      cfg,
		store:       store,
		metrics:     m,
	}
}

// Router builds the public router.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(a.sugarLogger))
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: a.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler)
	r.Use(a.metrics.Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.PlainText(w, r, "Not Found")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, helpText)
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "pong")
	})

	user.NewAPI(a.store, a.metrics).Routes(r)
	diag.NewHandler(a.config.ReadFile).Routes(r)

	return r
}

// DiagRouter serves metrics on the separate diag address.
func (a *App) DiagRouter(metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	return r
}
