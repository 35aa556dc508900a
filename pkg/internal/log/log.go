/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mutex         sync.RWMutex
	defaultLevel  = zapcore.InfoLevel
	moduleLevels  = make(map[string]zapcore.Level)
	encoderConfig = zap.NewProductionEncoderConfig()
)

// New returns a logger for the given module. Log statements include the
// module name so that output from different components can be told apart.
func New(module string) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(GetLevel(module)),
	)

	return zap.New(core).Named(module)
}

// SetLevel sets the log level for the given module.
func SetLevel(module string, level zapcore.Level) {
	mutex.Lock()
	defer mutex.Unlock()

	moduleLevels[module] = level
}

// SetDefaultLevel sets the default log level.
func SetDefaultLevel(level zapcore.Level) {
	mutex.Lock()
	defer mutex.Unlock()

	defaultLevel = level
}

// GetLevel returns the log level for the given module.
func GetLevel(module string) zapcore.Level {
	mutex.RLock()
	defer mutex.RUnlock()

	if level, ok := moduleLevels[module]; ok {
		return level
	}

	return defaultLevel
}
