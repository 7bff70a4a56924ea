// Package jobs runs the periodic maintenance tasks of the service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kyc-hub/config"
)

const (
	defaultBlacklistRefresh = "@every 10m"
	defaultUnverifiedPurge  = "@daily"
	defaultRetention        = 7 * 24 * time.Hour
	jobTimeout              = 5 * time.Minute
)

// BlacklistRefresher reloads the in-memory Aadhaar blacklist
type BlacklistRefresher interface {
	RefreshBlacklist(ctx context.Context) error
}

// UnverifiedPurger deletes accounts that never confirmed their email
type UnverifiedPurger interface {
	PurgeUnverified(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Scheduler struct {
	cron      *cron.Cron
	blacklist BlacklistRefresher
	users     UnverifiedPurger
	retention time.Duration
	log       *zap.Logger
}

// New registers the jobs without starting them
func New(cfg config.SchedulerConfig, blacklist BlacklistRefresher, users UnverifiedPurger, log *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		blacklist: blacklist,
		users:     users,
		retention: cfg.UnverifiedRetention,
		log:       log,
	}
	if s.retention <= 0 {
		s.retention = defaultRetention
	}

	refreshSpec := cfg.BlacklistRefresh
	if refreshSpec == "" {
		refreshSpec = defaultBlacklistRefresh
	}
	if _, err := s.cron.AddFunc(refreshSpec, s.RefreshBlacklist); err != nil {
		return nil, fmt.Errorf("schedule blacklist refresh %q: %w", refreshSpec, err)
	}

	purgeSpec := cfg.UnverifiedPurge
	if purgeSpec == "" {
		purgeSpec = defaultUnverifiedPurge
	}
	if _, err := s.cron.AddFunc(purgeSpec, s.PurgeUnverified); err != nil {
		return nil, fmt.Errorf("schedule unverified purge %q: %w", purgeSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out")
	}
}

func (s *Scheduler) RefreshBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.blacklist.RefreshBlacklist(ctx); err != nil {
		s.log.Error("Blacklist refresh failed", zap.Error(err))
		return
	}
	s.log.Debug("Blacklist refreshed")
}

func (s *Scheduler) PurgeUnverified() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.users.PurgeUnverified(ctx, s.retention)
	if err != nil {
		s.log.Error("Unverified account purge failed", zap.Error(err))
		return
	}
	s.log.Info("Purged unverified accounts", zap.Int64("deleted", n), zap.Duration("retention", s.retention))
}

// cronLogger routes cron's own logging to zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
