// Package cmd holds the startup helpers shared by the site binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/config"
	"github.com/louisbranch/agencysite/internal/platform/logging"
	"github.com/louisbranch/agencysite/internal/platform/otel"
)

// telemetryShutdownTimeout bounds the final span flush.
const telemetryShutdownTimeout = 5 * time.Second

// Service names reported as the OpenTelemetry service.name.
const (
	ServiceSite        = "site"
	ServiceMaintenance = "maintenance"
)

// ParseConfig loads environment values and envDefault tags into cfg. Flags
// registered afterwards use them as their defaults.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags. A nil args slice parses nothing.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag set is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Run sets up tracing for service, runs fn and flushes pending spans. Flush
// failures are logged, not returned.
func Run(ctx context.Context, service string, logger *zap.Logger, fn func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.OrNop(logger)

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.String("service", service), zap.Error(err))
		}
	}()
	return fn(ctx)
}
