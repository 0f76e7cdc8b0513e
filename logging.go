package main

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/common/promlog"
)

func newPromLogger(logLevel string) log.Logger {
	allowedLevel := &promlog.AllowedLevel{}
	if err := allowedLevel.Set(logLevel); err != nil {
		// Unknown levels fall back to info rather than failing startup.
		_ = allowedLevel.Set("info")
	}
	return promlog.New(&promlog.Config{Level: allowedLevel})
}

// promhttpLogger adapts a go-kit logger to promhttp's ErrorLog.
type promhttpLogger struct {
	logger log.Logger
}

func (l promhttpLogger) Println(v ...interface{}) {
	level.Error(l.logger).Log("msg", fmt.Sprint(v...))
}
