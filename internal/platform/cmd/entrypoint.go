// Package cmd holds the startup plumbing shared by the content repository
// commands: environment and flag parsing plus a traced run wrapper.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/louisbranch/contentrepository/internal/platform/config"
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/platform/otel"
	"github.com/louisbranch/contentrepository/internal/platform/timeouts"
)

// Service names reported as the OpenTelemetry service.name.
const (
	ServiceContent    = "content"
	ServiceDimensions = "dimensions"
)

var (
	// ErrServiceRequired indicates a blank service name.
	ErrServiceRequired = errors.New("service name is required")
	// ErrRunRequired indicates a missing run function.
	ErrRunRequired = errors.New("run function is required")
)

// ParseConfig loads environment defaults into cfg. Flags registered
// afterwards use these values as their defaults, so flags win over env.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service and calls run.
//
// Telemetry shutdown runs after run returns, bounded by
// timeouts.TelemetryShutdown. A shutdown failure is logged, never returned,
// so it cannot mask run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return ErrServiceRequired
	}
	if run == nil {
		return ErrRunRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.TelemetryShutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s: otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

// FailureMessage renders the exit message for a failed service run. Domain
// errors carry their localized message, reason, and gRPC code.
func FailureMessage(service, locale string, err error) string {
	return service + ": " + apperrors.Report(err, locale)
}

// ExitOnError prints FailureMessage to stderr and exits with code 1 when err
// is non-nil.
func ExitOnError(service, locale string, err error) {
	if err == nil {
		return
	}
	config.Exitf("%s", FailureMessage(service, locale, err))
}
