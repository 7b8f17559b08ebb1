package cli

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/application"
	appcases "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/cases"
	applesions "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/lesions"
	appreport "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/report"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/config"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/infra/archive"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/infra/backend"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/infra/cache"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/session"
)

// app wires config, session and services for one CLI invocation.
type app struct {
	cfg        *config.Config
	sess       *session.Session
	client     *backend.Client
	aggregator *applesions.Aggregator
	engine     *applesions.Engine
	review     *appcases.Service
	reports    *appreport.Service
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	sess, err := session.NewPersistent(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("token store error: %w", err)
	}
	sess.Subscribe(func(e session.Event) {
		if e == session.EventLogout {
			log.Info("session cleared, run `dermasense login` to sign in again")
		}
	})

	client := backend.New(cfg.Backend.BaseURL, sess, cfg.BackendTimeout())

	a := &app{
		cfg:    cfg,
		sess:   sess,
		client: client,
		engine: &applesions.Engine{Directory: client},
		review: appcases.NewService(client),
	}

	a.aggregator = &applesions.Aggregator{
		Directory: client,
		Auth:      client,
		Clock:     application.SystemClock{},
	}
	if cfg.Cache.Path != "" {
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			log.WithError(err).Warn("dashboard cache unavailable")
		} else {
			a.aggregator.Cache = c
		}
	}

	a.reports = &appreport.Service{Clock: application.SystemClock{}}
	if cfg.Archive.Enabled {
		store, err := archive.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		a.reports.Archive = store
	}

	return a, nil
}

func (a *app) defaultVariant() analysis.Variant {
	return analysis.Variant(a.cfg.Scan.DefaultModel)
}

// finish clears the session on auth failures so the next invocation starts
// logged out, then passes the error through.
func (a *app) finish(err error) error {
	if derrors.IsAuth(err) {
		a.sess.Clear()
	}
	return err
}
