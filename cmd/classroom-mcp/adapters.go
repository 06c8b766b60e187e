package main

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerLogger adapts zap.Logger to the badger.Logger interface
type BadgerLogger struct {
	logger *zap.SugaredLogger
}

// NewBadgerLogger creates a new BadgerLogger adapter
func NewBadgerLogger(logger *zap.Logger) badger.Logger {
	return &BadgerLogger{logger: logger.Named("badger").Sugar()}
}

// Errorf logs an error message
func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Errorf(trimNewline(format), args...)
}

// Warningf logs a warning message
func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warnf(trimNewline(format), args...)
}

// Infof logs badger's info output at debug level
func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debugf(trimNewline(format), args...)
}

// Debugf logs a debug message
func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Debugf(trimNewline(format), args...)
}

func trimNewline(format string) string {
	return strings.TrimSuffix(format, "\n")
}
