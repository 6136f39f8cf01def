//
// USERGRAPH
// =========
// A small HTTP service over a collection of users linked by symmetric
// friendships. The collection lives in memory and is mirrored to a JSON
// file after every change.
//
// Print the route docs:
// ---------------------
// $ go run . -routes
//
// Boot the server:
// ----------------
// $ go run .
//
// Client requests:
// ----------------
// $ curl 'http://127.0.0.1:3000/createuser?id=1&firstname=Ann&lastname=Lee&status=online'
// [{"id":1,"firstName":"Ann","lastName":"Lee","status":"online","friends":[]}]
//
// $ curl 'http://127.0.0.1:3000/createuser?id=2&firstname=Bo&lastname=Ray&status=away'
//
// $ curl 'http://127.0.0.1:3000/updateuser?id=1&status=busy&friends=2'
// [{"id":1,...,"friends":[2]},{"id":2,...,"friends":[1]}]
//
// $ curl 'http://127.0.0.1:3000/deleteuser?id=2'
// [{"id":1,...,"friends":[]}]
//
// $ curl http://127.0.0.1:9999/metrics
//
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/docgen"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/usergraph/internal/config"
	"github.com/SergeyParamoshkin/usergraph/internal/logger"
	"github.com/SergeyParamoshkin/usergraph/internal/metrics"
	"github.com/SergeyParamoshkin/usergraph/internal/user"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync() // flushes buffer, if any
	sugar := log.Sugar()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorw("server stopped", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, sugar *zap.SugaredLogger) error {
	exporter, err := metrics.NewExporter()
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	store, err := user.NewStore(user.NewFileStorage(cfg.DataFile), sugar)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	a := NewApp(cfg, sugar, store, metrics.New(global.Meter(config.ServiceName)))
	r := a.Router()

	// Passing -routes prints docs for the router definition above.
	if cfg.Routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/usergraph",
			Intro:       "Routes of the usergraph service.",
		}))

		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{
		{Addr: cfg.Addr, Handler: r, ReadTimeout: cfg.ReadTimeout, WriteTimeout: cfg.WriteTimeout},
		{Addr: cfg.DiagAddr, Handler: a.DiagRouter(exporter), ReadTimeout: cfg.ReadTimeout, WriteTimeout: cfg.WriteTimeout},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			sugar.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		sugar.Infow("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}
