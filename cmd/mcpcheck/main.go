package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chatbridge/mcpcheck/internal/buildstep"
	"github.com/chatbridge/mcpcheck/internal/config"
	"github.com/chatbridge/mcpcheck/internal/conformance"
	"github.com/chatbridge/mcpcheck/internal/core"
	"github.com/chatbridge/mcpcheck/internal/db"
	"github.com/chatbridge/mcpcheck/internal/harness"
	"github.com/chatbridge/mcpcheck/internal/report"
	"github.com/chatbridge/mcpcheck/internal/telemetry"
)

var (
	version   = ""
	gitCommit = ""
	buildTime = ""
)

func main() {
	os.Exit(run())
}

// run carries the real entry point so deferred cleanup still happens before
// the process exits.
func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))

	manifest, err := loadManifest(logger)
	if err != nil {
		return 1
	}

	profileName := strings.TrimSpace(envOrDefault("MCPCHECK_PROFILE", manifest.Profile))
	profile, err := core.LoadProfile(profileName)
	if err != nil {
		logger.Error("invalid MCPCHECK_PROFILE", "value", profileName, "err", err)
		return 1
	}
	logger.Info("profile loaded", "profile", profile.Name, "version", version, "git_commit", gitCommit, "build_time", buildTime)

	settings, err := config.Resolve(profile, manifest, os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	logger.Info("effective config",
		"profile", profile.Name,
		"target", settings.Target,
		"timeout_seconds", settings.TimeoutSeconds,
		"strict_schemas", settings.StrictSchemas,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer := report.NewPrinter(os.Stdout)

	if settings.BuildCommand != "" && !settings.SkipBuild {
		builder, err := buildstep.NewRunner(buildstep.Config{
			Command:        settings.BuildCommand,
			WorkDir:        settings.BuildWorkDir,
			Timeout:        time.Duration(settings.BuildTimeoutSec) * time.Second,
			MaxOutputBytes: settings.MaxOutputBytes,
		})
		if err != nil {
			logger.Error("build runner init failed", "err", err)
			return 1
		}
		printer.BuildStarted(settings.BuildCommand)
		buildReport, err := builder.Run(ctx)
		if err != nil {
			code := "build_failed"
			var coded core.CodedError
			if errors.As(err, &coded) {
				code = coded.ErrorCode()
			}
			printer.BuildFailed(buildReport.Stderr)
			logger.Error("build failed", "code", code, "err", err, "exit_code", buildReport.ExitCode)
			return 1
		}
		printer.BuildSucceeded()
	}

	var sink conformance.RecordSink
	if settings.DatabaseURL != "" {
		database, err := db.New(settings.DatabaseURL)
		if err != nil {
			logger.Error("run history database connection failed", "err", err)
			return 1
		}
		defer database.Close()
		sink = database
	}

	transport := harness.NewTransport(harness.TransportConfig{
		Timeout:        time.Duration(settings.TimeoutSeconds) * time.Second,
		MaxOutputBytes: settings.MaxOutputBytes,
	})
	probe := harness.NewProbe(settings.Target, transport, logger)

	cases := conformance.DefaultCases(settings.RequiredTools)
	if settings.StrictSchemas {
		cases = append(cases, conformance.ToolSchemasCase())
	}

	suite := conformance.NewSuite(probe, cases, logger)
	suite.SetReporter(printer)
	suite.SetSink(sink)
	suite.SetRunInfo(settings.Target, profile.Name)

	summary := suite.Run(ctx)
	logger.Debug("telemetry snapshot", "metrics", telemetry.Snapshot())
	return summary.ExitCode()
}

func loadManifest(logger *slog.Logger) (*config.Manifest, error) {
	path := strings.TrimSpace(os.Getenv("MCPCHECK_MANIFEST"))
	explicit := path != ""
	if path == "" {
		path = "mcpcheck.toml"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			logger.Error("manifest not readable", "path", path, "err", err)
			return nil, err
		}
		return &config.Manifest{}, nil
	}
	m, err := config.Load(path)
	if err != nil {
		logger.Error("manifest load failed", "path", path, "err", err)
		return nil, err
	}
	logger.Info("manifest loaded", "path", path)
	return m, nil
}

func logLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MCPCHECK_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
