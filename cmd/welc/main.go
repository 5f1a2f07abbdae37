package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/collectors"
	"github.com/AndiBellstedt/WinEventLogCustomization/internal/config"
	"github.com/AndiBellstedt/WinEventLogCustomization/internal/eventlog"
)

// session is what the commands need from an event-log connection.
type session interface {
	collectors.Writer
	Close() error
}

type app struct {
	cfg    *config.Config
	stdout io.Writer
	// open connects to the host named in cfg. Tests replace it.
	open func(cfg *config.Config) (session, error)
	// interactive reports whether serve runs in the foreground rather than
	// under the service manager.
	interactive func() bool
}

func openEventLog(cfg *config.Config) (session, error) {
	s, err := eventlog.Open(eventlog.Options{
		Computer: cfg.Computer,
		User:     cfg.User,
		Domain:   cfg.Domain,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdout: os.Stdout, open: openEventLog, interactive: service.Interactive}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "welc",
		Short: "Create, register and configure custom Windows event log channels",
		Long: `welc builds instrumentation manifests for custom event log channels (as used
by Windows Event Forwarding collectors), registers them, reads and changes
channel configuration on local or remote hosts, and exports that configuration
as prometheus metrics or NATS JetStream snapshots.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}
			a.cfg = cfg
			setupLogging(cfg)
			return nil
		},
	}

	config.BindGlobalFlags(rootCmd)
	rootCmd.PersistentFlags().StringP("output", "o", formatTable, "Output format: json, yaml or table")
	rootCmd.SetOut(a.stdout)

	rootCmd.AddCommand(
		newManifestCmd(a),
		newChannelCmd(a),
		newProviderCmd(a),
		newCollectCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// setupLogging sends the log to a rotating file when one is configured.
func setupLogging(cfg *config.Config) {
	if cfg.LogFile == "" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})
}

// withSession opens a session for the duration of fn.
func (a *app) withSession(fn func(s session) error) error {
	s, err := a.open(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("Failed to close session: %v", err)
		}
	}()
	return fn(s)
}
