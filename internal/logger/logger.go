// Package logger holds the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
)

var myLogger *zap.SugaredLogger

// Set replaces the global logger.
func Set(logger *zap.SugaredLogger) {
	myLogger = logger
}

// I returns the global logger.
func I() *zap.SugaredLogger {
	return myLogger
}

// New builds a production logger, or a development logger when verbose is set.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		l, err = cfg.Build()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func init() {
	Set(zap.NewNop().Sugar())
}
