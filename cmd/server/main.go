package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	accesshandler "casevault/internal/access/handler"
	accesssvc "casevault/internal/access/service"
	activityhandler "casevault/internal/activity/handler"
	activitypublisher "casevault/internal/activity/publisher"
	activitysvc "casevault/internal/activity/service"
	"casevault/internal/authz"
	blobhandler "casevault/internal/blob/handler"
	caseshandler "casevault/internal/cases/handler"
	casessvc "casevault/internal/cases/service"
	evidencehandler "casevault/internal/evidence/handler"
	evidencesvc "casevault/internal/evidence/service"
	httpapi "casevault/internal/http"
	identityhandler "casevault/internal/identity/handler"
	identitysvc "casevault/internal/identity/service"
	jwttoken "casevault/internal/jwt_token"
	ledgerhandler "casevault/internal/ledger/handler"
	"casevault/internal/platform/config"
	"casevault/internal/platform/httpserver"
	"casevault/internal/platform/logger"
	"casevault/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "casevault: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level)
	if cfg.UsesDevSigningKey() {
		log.Warn("using the built-in development JWT signing key; set JWT_SIGNING_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	st := buildStores(deps)
	gw := buildGateways(cfg, log, m)

	activityOpts := []activitysvc.Option{activitysvc.WithLogger(log)}
	if deps.producer != nil {
		activityOpts = append(activityOpts, activitysvc.WithPublisher(activitypublisher.NewKafka(deps.producer, m, log)))
	}
	activity := activitysvc.New(st.activity, userSummaries{st.users}, activityOpts...)

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey)
	identity := identitysvc.New(st.users, tokens, st.revocation,
		identitysvc.WithLogger(log),
		identitysvc.WithMetrics(m),
		identitysvc.WithTokenTTL(cfg.Server.TokenTTL),
		identitysvc.WithActivityRecorder(activity),
	)

	if cfg.Admin.Password != "" {
		admin, err := identity.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info("admin account ready", "username", admin.Username)
	}

	cases := casessvc.New(st.cases, st.requests, st.access, identity, st.runner,
		casessvc.WithLogger(log),
		casessvc.WithMetrics(m),
		casessvc.WithActivityRecorder(activity),
	)
	access := accesssvc.New(st.access, st.cases, st.evidence, identity, st.runner,
		accesssvc.WithLogger(log),
		accesssvc.WithActivityRecorder(activity),
	)
	evidence := evidencesvc.New(st.evidence, st.cases, activity, st.runner,
		evidencesvc.WithLogger(log),
		evidencesvc.WithMetrics(m),
		evidencesvc.WithGateways(gw.blobs, gw.ledger),
	)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}

	identityRoutes := identityhandler.New(identity, log)
	casesRoutes := caseshandler.New(cases, log)
	accessRoutes := accesshandler.New(access, log)
	activityRoutes := activityhandler.New(activity, log)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:        log,
		Metrics:       m,
		Gatherer:      reg,
		Tokens:        tokens.Verifier(),
		Revocation:    identity,
		Policy:        enforcer,
		CORSOrigins:   cfg.Server.CORSOrigins,
		AuthRateLimit: cfg.Server.AuthRateLimit,
		Public:        []httpapi.PublicRoutes{identityRoutes},
		Routes: []httpapi.Routes{
			identityRoutes,
			casesRoutes,
			accessRoutes,
			evidencehandler.New(evidence, log),
			activityRoutes,
			ledgerhandler.New(gw.ledger, log),
			blobhandler.New(gw.blobs, log),
		},
		Admin:  []httpapi.AdminRoutes{identityRoutes, casesRoutes, accessRoutes, activityRoutes},
		Health: deps.healthChecks(),
	})

	srv := httpserver.New(cfg.Server, router, log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("casevault listening",
			"addr", cfg.Server.Addr,
			"in_memory", cfg.InMemory(),
			"ledger", cfg.Ledger.Mode,
			"blob", cfg.Blob.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drain := httpserver.DrainTimeout(cfg.Server)
		log.Info("shutting down", "drain", drain)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
