package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kyc-hub/config"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshBlacklist(context.Context) error {
	f.calls++
	return f.err
}

type fakePurger struct {
	olderThan time.Duration
	deleted   int64
	err       error
}

func (f *fakePurger) PurgeUnverified(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, f.err
}

func TestNewRegistersJobs(t *testing.T) {
	s, err := New(config.SchedulerConfig{}, &fakeRefresher{}, &fakePurger{}, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, s.cron.Entries(), 2)
	assert.Equal(t, defaultRetention, s.retention)
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(config.SchedulerConfig{BlacklistRefresh: "every now and then"}, &fakeRefresher{}, &fakePurger{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blacklist refresh")

	_, err = New(config.SchedulerConfig{UnverifiedPurge: "61 * * * *"}, &fakeRefresher{}, &fakePurger{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unverified purge")
}

func TestRefreshBlacklist(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	refresher := &fakeRefresher{err: errors.New("mongo down")}
	s, err := New(config.SchedulerConfig{}, refresher, &fakePurger{}, zap.New(core))
	require.NoError(t, err)

	s.RefreshBlacklist()

	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, 1, logs.FilterMessage("Blacklist refresh failed").Len())
}

func TestPurgeUnverified(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	purger := &fakePurger{deleted: 3}
	s, err := New(config.SchedulerConfig{UnverifiedRetention: 48 * time.Hour}, &fakeRefresher{}, purger, zap.New(core))
	require.NoError(t, err)

	s.PurgeUnverified()

	assert.Equal(t, 48*time.Hour, purger.olderThan)
	entries := logs.FilterMessage("Purged unverified accounts").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0].ContextMap()["deleted"])
}

func TestStartStop(t *testing.T) {
	s, err := New(config.SchedulerConfig{}, &fakeRefresher{}, &fakePurger{}, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
