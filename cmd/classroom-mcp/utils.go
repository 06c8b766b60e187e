package main

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
)

// GetRedisURL returns the Redis URL with the following priority:
// 1. REDIS_URL environment variable
// 2. CLASSROOM_MCP_REDIS_URL_FILE file content
// 3. Default value
func GetRedisURL(logger *zap.Logger) string {
	// Priority 1: Environment variable
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		logger.Debug("Using Redis URL from environment variable")
		return redisURL
	}

	// Priority 2: Configurable connection file path
	connectionFile := os.Getenv("CLASSROOM_MCP_REDIS_URL_FILE")
	if connectionFile == "" {
		connectionFile = filepath.Join(config.DefaultConfigDir(), "redis-url")
	}

	if content, err := os.ReadFile(connectionFile); err == nil {
		redisURL := strings.TrimSpace(string(content))
		if len(redisURL) > 0 {
			logger.Debug("Using Redis URL from connection file", zap.String("file", connectionFile))
			return redisURL
		}
	} else {
		logger.Debug("Redis connection file not found or empty", zap.String("file", connectionFile))
	}

	// Priority 3: Default
	logger.Debug("Using default Redis URL")
	return "redis://127.0.0.1:6379/0"
}
