package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inventrack/inventory-server-go/internal/model"
)

type mockAccessCodeRepo struct {
	deleteExpiredCount int64
	deletedBefore      time.Time
}

func (m *mockAccessCodeRepo) CreateExclusive(ctx context.Context, params model.CreateAccessCodeParams, now time.Time) (*model.AccessCode, error) {
	return nil, nil
}

func (m *mockAccessCodeRepo) FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error) {
	return nil, nil
}

func (m *mockAccessCodeRepo) FindActiveByInventoryID(ctx context.Context, inventoryID string, now time.Time) (*model.AccessCode, error) {
	return nil, nil
}

func (m *mockAccessCodeRepo) RevokeByInventoryID(ctx context.Context, inventoryID string) (int64, int64, error) {
	return 0, 0, nil
}

func (m *mockAccessCodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.deletedBefore = cutoff
	return m.deleteExpiredCount, nil
}

type mockAccessGrantRepo struct {
	deleteStaleCount int64
}

func (m *mockAccessGrantRepo) Create(ctx context.Context, params model.CreateAccessGrantParams) (*model.AccessGrant, error) {
	return nil, nil
}

func (m *mockAccessGrantRepo) FindByUserAndCode(ctx context.Context, userID, accessCodeID string) (*model.AccessGrant, error) {
	return nil, nil
}

func (m *mockAccessGrantRepo) ListUsersByCode(ctx context.Context, accessCodeID string) ([]model.GrantedUser, error) {
	return nil, nil
}

func (m *mockAccessGrantRepo) ListActiveCodesByUser(ctx context.Context, userID string, now time.Time) ([]model.AccessCode, error) {
	return nil, nil
}

func (m *mockAccessGrantRepo) DeleteForCodesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.deleteStaleCount, nil
}

func TestRetentionJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewRetentionJob(nil, nil, 180*24*time.Hour, 5*time.Minute)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Minute, job.interval)
		assert.Equal(t, 180*24*time.Hour, job.retention)
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		codeRepo := &mockAccessCodeRepo{}
		grantRepo := &mockAccessGrantRepo{}

		job := NewRetentionJob(codeRepo, grantRepo, 24*time.Hour, 100*time.Millisecond)

		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()
	})

	t.Run("purges on start with retention cutoff", func(t *testing.T) {
		codeRepo := &mockAccessCodeRepo{deleteExpiredCount: 2}
		grantRepo := &mockAccessGrantRepo{deleteStaleCount: 4}

		retention := 30 * 24 * time.Hour
		job := NewRetentionJob(codeRepo, grantRepo, retention, 1*time.Hour)

		job.Start()
		time.Sleep(10 * time.Millisecond)
		job.Stop()

		wantCutoff := time.Now().Add(-retention)
		assert.WithinDuration(t, wantCutoff, codeRepo.deletedBefore, time.Minute)
	})
}
