package l2

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces/mock"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

func testRedisConfig() config.RedisConfig {
	return config.RedisConfig{
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		KeyPrefix:    "classroom-mcp:",
	}
}

func TestNewRedisStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	logger := zap.NewNop()

	store := NewRedisStore(testRedisConfig(), mockClient, logger)

	assert.NotNil(t, store)
	assert.Equal(t, mockClient, store.client)
	assert.Equal(t, logger, store.logger)
}

func TestRedisStore_Get_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	entryJSON, _ := json.Marshal(models.CacheEntry{Data: []byte("test-data"), CreatedAt: 1})

	stringCmd := redis.NewStringResult(string(entryJSON), nil)
	mockClient.EXPECT().Get(gomock.Any(), "classroom-mcp:materials:c1").Return(stringCmd)

	entry, found := store.Get(context.Background(), "materials:c1")

	assert.True(t, found)
	require.NotNil(t, entry)
	assert.Equal(t, []byte("test-data"), entry.Data)
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	stringCmd := redis.NewStringResult("", redis.Nil)
	mockClient.EXPECT().Get(gomock.Any(), "classroom-mcp:materials:c1").Return(stringCmd)

	entry, found := store.Get(context.Background(), "materials:c1")

	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestRedisStore_Get_ConnectionErrorReadsAsAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	stringCmd := redis.NewStringResult("", errors.New("connection refused"))
	mockClient.EXPECT().Get(gomock.Any(), "classroom-mcp:topics:c1").Return(stringCmd)

	entry, found := store.Get(context.Background(), "topics:c1")

	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestRedisStore_Get_CorruptedEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	stringCmd := redis.NewStringResult("invalid-json", nil)
	mockClient.EXPECT().Get(gomock.Any(), "classroom-mcp:topics:c1").Return(stringCmd)

	entry, found := store.Get(context.Background(), "topics:c1")

	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestRedisStore_Set_NoExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	var stored []byte
	mockClient.EXPECT().
		Set(gomock.Any(), "classroom-mcp:materials:c1", gomock.Any(), time.Duration(0)).
		DoAndReturn(func(_ context.Context, _ string, value interface{}, _ time.Duration) *redis.StatusCmd {
			stored = value.([]byte)
			return redis.NewStatusResult("OK", nil)
		})

	err := store.Set(context.Background(), "materials:c1", []byte("test-data"))
	require.NoError(t, err)

	var entry models.CacheEntry
	require.NoError(t, json.Unmarshal(stored, &entry))
	assert.Equal(t, []byte("test-data"), entry.Data)
	assert.Zero(t, entry.ExpiresAt)
}

func TestRedisStore_Set_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	statusCmd := redis.NewStatusResult("", errors.New("READONLY replica"))
	mockClient.EXPECT().Set(gomock.Any(), "classroom-mcp:materials:c1", gomock.Any(), time.Duration(0)).Return(statusCmd)

	err := store.Set(context.Background(), "materials:c1", []byte("test-data"))
	assert.Error(t, err)
}

func TestRedisStore_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	intCmd := redis.NewIntResult(1, nil)
	mockClient.EXPECT().Del(gomock.Any(), "classroom-mcp:materials:c1").Return(intCmd)

	store.Delete(context.Background(), "materials:c1")
}

func TestRedisStore_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mock.NewMockRedisClient(ctrl)
	store := NewRedisStore(testRedisConfig(), mockClient, zap.NewNop())

	mockClient.EXPECT().Close().Return(nil)

	assert.NoError(t, store.Close())
}
