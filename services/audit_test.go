package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kyc-hub/models"
	"kyc-hub/services"
	"kyc-hub/services/storetest"
)

type failingAuditStore struct{}

func (failingAuditStore) Insert(context.Context, *models.AuditLog) error {
	return errors.New("mongo down")
}

func (failingAuditStore) List(context.Context, int, int) ([]models.AuditLog, int64, error) {
	return nil, 0, errors.New("mongo down")
}

func TestAuditRecordAndTrail(t *testing.T) {
	ctx := context.Background()
	store := &storetest.Audit{}
	svc := services.NewAuditService(store, zap.NewNop())

	for i := 0; i < 25; i++ {
		svc.Record(ctx, "user-1", models.ActionLogin, map[string]interface{}{"n": i}, "10.0.0.1")
	}
	require.Len(t, store.Entries, 25)
	assert.Equal(t, "10.0.0.1", store.Entries[0].IPAddress)
	assert.False(t, store.Entries[0].Timestamp.IsZero())

	page, total, err := svc.Trail(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page, 20)
	assert.Equal(t, 24, page[0].Details["n"], "newest first")

	page, _, err = svc.Trail(ctx, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func TestAuditRecordSwallowsStoreErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := services.NewAuditService(failingAuditStore{}, zap.New(core))

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), "user-1", models.ActionLogout, nil, "")
	})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, models.ActionLogout, logs.All()[0].ContextMap()["action"])

	_, _, err := svc.Trail(context.Background(), 1, 10)
	assert.Error(t, err)
}
