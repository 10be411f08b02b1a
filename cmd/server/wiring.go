package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	accesssvc "casevault/internal/access/service"
	accessstore "casevault/internal/access/store"
	activitysvc "casevault/internal/activity/service"
	activitystore "casevault/internal/activity/store"
	"casevault/internal/blob"
	"casevault/internal/blob/ipfs"
	"casevault/internal/blob/memblob"
	casessvc "casevault/internal/cases/service"
	"casevault/internal/cases/store/casefile"
	"casevault/internal/cases/store/caserequest"
	evidencesvc "casevault/internal/evidence/service"
	evidencestore "casevault/internal/evidence/store"
	httpapi "casevault/internal/http"
	identitymodels "casevault/internal/identity/models"
	identitysvc "casevault/internal/identity/service"
	"casevault/internal/identity/store/revocation"
	"casevault/internal/identity/store/user"
	"casevault/internal/ledger"
	"casevault/internal/ledger/memledger"
	"casevault/internal/ledger/peercli"
	"casevault/internal/platform/config"
	"casevault/internal/platform/gateway"
	"casevault/internal/platform/kafka"
	"casevault/internal/platform/metrics"
	"casevault/internal/platform/postgres"
	redisclient "casevault/internal/platform/redis"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

// infra holds the optional external connections; nil fields mean the
// dependency is not configured.
type infra struct {
	db       *sql.DB
	redis    *redisclient.Client
	producer *kafka.Producer
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if !cfg.InMemory() {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				in.close(log)
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
	} else {
		log.Warn("DATABASE_URL not set; all data is kept in memory")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.close(log)
		return nil, err
	}
	in.redis = rc

	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ActivityTopic, log)
		if err != nil {
			in.close(log)
			return nil, err
		}
		if err := p.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			log.Warn("could not ensure activity topic", "topic", cfg.Kafka.ActivityTopic, "error", err)
		}
		in.producer = p
	}
	return in, nil
}

func (in *infra) close(log *slog.Logger) {
	if in.producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := in.producer.Close(ctx); err != nil {
			log.Warn("kafka producer close", "error", err)
		}
		cancel()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("redis close", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("database close", "error", err)
		}
	}
}

func (in *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if in.db != nil {
		checks["database"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.producer != nil {
		checks["kafka"] = in.producer.Ping
	}
	return checks
}

type caseFileStore interface {
	casessvc.CaseStore
	accesssvc.CaseReader
	evidencesvc.CaseStore
}

type accessStore interface {
	accesssvc.AccessStore
	casessvc.AccessGrants
}

type evidenceStore interface {
	evidencesvc.EvidenceStore
	accesssvc.EvidenceTitles
}

type stores struct {
	users      identitysvc.UserStore
	revocation identitysvc.RevocationList
	cases      caseFileStore
	requests   casessvc.RequestStore
	access     accessStore
	evidence   evidenceStore
	activity   activitysvc.Store
	runner     tx.Runner
}

// buildStores picks PostgreSQL when a database is configured. The memory
// stores share one LockRunner so a unit of work spanning several of them
// rolls back as a whole.
func buildStores(in *infra) stores {
	var st stores
	if in.db != nil {
		st = stores{
			users:      user.NewPostgres(in.db),
			revocation: revocation.NewPostgresTRL(in.db, time.Now),
			cases:      casefile.NewPostgres(in.db),
			requests:   caserequest.NewPostgres(in.db),
			access:     accessstore.NewPostgres(in.db),
			evidence:   evidencestore.NewPostgres(in.db),
			activity:   activitystore.NewPostgres(in.db),
			runner:     tx.NewPostgresRunner(in.db),
		}
	} else {
		cases, requests, grants := casefile.New(), caserequest.New(), accessstore.New()
		evidence, activity := evidencestore.New(), activitystore.New()
		st = stores{
			users:      user.New(),
			revocation: revocation.NewInMemoryTRL(time.Now),
			cases:      cases,
			requests:   requests,
			access:     grants,
			evidence:   evidence,
			activity:   activity,
			runner:     tx.NewLockRunner(),
		}
	}
	if in.redis != nil {
		st.revocation = revocation.NewRedisTRL(in.redis.Client)
	}
	return st
}

type gateways struct {
	ledger *ledger.Guarded
	blobs  *blob.Guarded
}

func buildGateways(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) gateways {
	var anchor ledger.Gateway = memledger.New()
	if cfg.Ledger.Mode == "peer" {
		anchor = peercli.New(peercli.Config{
			Binary:        cfg.Ledger.PeerBinary,
			Orderer:       cfg.Ledger.Orderer,
			OrdererCA:     cfg.Ledger.OrdererCA,
			Channel:       cfg.Ledger.Channel,
			Chaincode:     cfg.Ledger.Chaincode,
			PeerAddress:   cfg.Ledger.PeerAddress,
			PeerTLSRootCA: cfg.Ledger.PeerTLSRootCA,
		})
	}
	var blobs blob.Store = memblob.New()
	if cfg.Blob.Mode == "ipfs" {
		blobs = ipfs.New(cfg.Blob.APIURL, ipfs.WithHTTPClient(&http.Client{Timeout: cfg.Blob.Timeout}))
	}
	return gateways{
		ledger: ledger.NewGuarded(anchor, gateway.NewGuard("ledger", log,
			gateway.WithTimeout(cfg.Ledger.Timeout),
			gateway.WithMetrics(m),
		)),
		blobs: blob.NewGuarded(blobs, gateway.NewGuard("blob", log,
			gateway.WithTimeout(cfg.Blob.Timeout),
			gateway.WithMetrics(m),
		)),
	}
}

// userSummaries lets the activity log join usernames straight from the user
// store, since the identity service itself records activity.
type userSummaries struct {
	users identitysvc.UserStore
}

func (u userSummaries) Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]identitymodels.Summary, error) {
	return u.users.FindSummaries(ctx, ids)
}
