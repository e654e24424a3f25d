package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/client"
	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/pool"
)

// tokenRefresher walks the pool's OAuth-backed entries on a cron schedule
// and refreshes any access token expiring within the near window, so
// requests rarely pay the refresh latency inline.
type tokenRefresher struct {
	pool        *pool.Pool
	nearMinutes int
	cron        *cron.Cron
}

func newTokenRefresher(p *pool.Pool, nearMinutes int) *tokenRefresher {
	if nearMinutes <= 0 {
		nearMinutes = 1
	}
	return &tokenRefresher{
		pool:        p,
		nearMinutes: nearMinutes,
		cron:        cron.New(),
	}
}

func (tr *tokenRefresher) Start() {
	spec := fmt.Sprintf("@every %dm", tr.nearMinutes)
	if _, err := tr.cron.AddFunc(spec, tr.sweep); err != nil {
		logrus.Errorf("token refresher schedule invalid: %v", err)
		return
	}
	tr.cron.Start()
	logrus.Infof("background token refresher running (%s)", spec)
}

func (tr *tokenRefresher) Stop() {
	ctx := tr.cron.Stop()
	<-ctx.Done()
}

// healthProber periodically probes checkHealthEnabled pool entries so dead
// accounts recover without waiting for live traffic to trip them.
type healthProber struct {
	pool *pool.Pool
	cron *cron.Cron
}

func newHealthProber(p *pool.Pool, everyMinutes int) *healthProber {
	if everyMinutes <= 0 {
		everyMinutes = 15
	}
	hp := &healthProber{pool: p, cron: cron.New()}
	spec := fmt.Sprintf("@every %dm", everyMinutes)
	if _, err := hp.cron.AddFunc(spec, hp.sweep); err != nil {
		logrus.Errorf("health prober schedule invalid: %v", err)
	}
	return hp
}

func (hp *healthProber) Start() { hp.cron.Start() }

func (hp *healthProber) Stop() {
	ctx := hp.cron.Stop()
	<-ctx.Done()
}

func (hp *healthProber) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	for _, kind := range hp.pool.Kinds() {
		hp.pool.Probe(ctx, kind)
	}
}

func (tr *tokenRefresher) sweep() {
	window := time.Duration(tr.nearMinutes) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, kind := range tr.pool.Kinds() {
		for _, entry := range tr.pool.Entries(kind) {
			if entry.IsDisabled || entry.Credentials.CredentialsFile == "" {
				continue
			}
			creds, err := config.LoadOAuthCredentials(entry.Credentials.CredentialsFile)
			if err != nil {
				logrus.Debugf("refresher skipping %s: %v", entry.UUID, err)
				continue
			}
			if !creds.ExpiresWithin(window) {
				continue
			}
			ts := client.NewTokenSource(entry.Kind, entry.Credentials.CredentialsFile)
			if err := ts.Refresh(ctx); err != nil {
				logrus.Warnf("background refresh failed for %s (%s): %v", entry.UUID, kind, err)
			} else {
				logrus.Infof("background refresh completed for %s (%s)", entry.UUID, kind)
			}
		}
	}
}
