package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/davecheney/pubmod/activitypub"
	"github.com/davecheney/pubmod/internal/group"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/models"
	"github.com/davecheney/pubmod/wellknown"
	"github.com/davecheney/pubmod/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type ServeCmd struct {
	Federation

	Addr             string        `help:"address to listen" default:":9999"`
	DeliveryInterval time.Duration `help:"interval between delivery queue passes" default:"5s"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	if err := configureDB(db); err != nil {
		return err
	}

	fed, err := s.open(ctx, db)
	if err != nil {
		return err
	}

	envFn := func(r *http.Request) *activitypub.Env {
		return fed.env(ctx, db.WithContext(r.Context()))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/", func(r chi.Router) {
		inbox := httpx.HandlerFunc(envFn, activitypub.InboxCreate)
		r.Post("/inbox", inbox)

		r.Route("/u/{name}", func(r chi.Router) {
			r.Get("/", httpx.HandlerFunc(envFn, activitypub.PersonShow))
			r.Post("/inbox", inbox)
			r.Get("/outbox", httpx.HandlerFunc(envFn, activitypub.OutboxShow))
		})
		r.Route("/c/{name}", func(r chi.Router) {
			r.Get("/", httpx.HandlerFunc(envFn, activitypub.CommunityShow))
			r.Post("/inbox", inbox)
			r.Get("/outbox", httpx.HandlerFunc(envFn, activitypub.OutboxShow))
			r.Get("/moderators", httpx.HandlerFunc(envFn, activitypub.ModeratorsShow))
			r.Get("/followers", httpx.HandlerFunc(envFn, activitypub.FollowersShow))
		})
		r.Get("/actor", httpx.HandlerFunc(envFn, activitypub.ServiceShow))
		r.Get("/activities/{kind}/{id}", httpx.HandlerFunc(envFn, activitypub.ActivitiesShow))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/community/bans", httpx.HandlerFunc(envFn, activitypub.BansIndex))
		})

		r.Route("/.well-known", func(r chi.Router) {
			r.Get("/webfinger", httpx.HandlerFunc(envFn, wellknown.WebfingerShow))
			r.Get("/host-meta", httpx.HandlerFunc(envFn, wellknown.HostMetaIndex))
			r.Get("/nodeinfo", httpx.HandlerFunc(envFn, wellknown.NodeInfoIndex))
		})
		r.Get("/nodeinfo/{version}", httpx.HandlerFunc(envFn, wellknown.NodeInfoShow))

		r.Handle("/metrics", promhttp.Handler())

		r.Get("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, "User-agent: *\nDisallow: /")
		})
	})

	if ctx.Debug {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			route = strings.Replace(route, "/*/", "/", -1)
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(r, walkFunc); err != nil {
			ctx.Logger.Warn("failed to walk routes", "error", err)
		}
	}

	svr := &http.Server{
		Addr:         s.Addr,
		Handler:      r,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := group.New(sigCtx)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return svr.Shutdown(shutdownCtx)
	})
	g.Go(func(context.Context) error {
		ctx.Logger.Info("http server listening", "addr", s.Addr, "domain", s.Domain)
		defer ctx.Logger.Info("http server stopped")
		if err := svr.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(workers.NewDeliveryProcessor(&models.Env{
		DB:     db,
		Logger: ctx.Logger,
	}, s.DeliveryInterval))
	return g.Wait()
}
