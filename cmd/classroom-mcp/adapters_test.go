package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBadgerLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewBadgerLogger(zap.New(core))

	logger.Errorf("compaction failed: %s\n", "disk full")
	logger.Warningf("slow write")
	logger.Infof("opened %d tables\n", 3)
	logger.Debugf("flush")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 4) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "compaction failed: disk full", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
		assert.Equal(t, "opened 3 tables", entries[2].Message)
		assert.Equal(t, "badger", entries[0].LoggerName)
	}
}

func TestGetRedisURL(t *testing.T) {
	logger := zap.NewNop()

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://cache:6379/1")
		assert.Equal(t, "redis://cache:6379/1", GetRedisURL(logger))
	})

	t.Run("connection file", func(t *testing.T) {
		path := t.TempDir() + "/redis-url"
		assert.NoError(t, os.WriteFile(path, []byte("  redis://file:6379/2\n"), 0o600))
		t.Setenv("REDIS_URL", "")
		t.Setenv("CLASSROOM_MCP_REDIS_URL_FILE", path)
		assert.Equal(t, "redis://file:6379/2", GetRedisURL(logger))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		t.Setenv("CLASSROOM_MCP_REDIS_URL_FILE", t.TempDir()+"/missing")
		assert.Equal(t, "redis://127.0.0.1:6379/0", GetRedisURL(logger))
	})
}
