package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/collectors"
	"github.com/AndiBellstedt/WinEventLogCustomization/internal/config"
	"github.com/AndiBellstedt/WinEventLogCustomization/internal/push"
	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

const stopTimeout = 10 * time.Second

// program implements service.Interface for running as a Windows service.
type program struct {
	run func(ctx context.Context) error
	// exit ends the process when run fails on its own. Defaults to os.Exit.
	exit   func(code int)
	cancel context.CancelFunc
	done   chan struct{}
}

// Start is called when the service starts.
func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		if err := p.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Service stopped with error: %v", err)
			exit := p.exit
			if exit == nil {
				exit = os.Exit
			}
			exit(1)
		}
	}()
	return nil
}

// Stop is called when the service stops.
func (p *program) Stop(s service.Service) error {
	log.Println("Service stopping")
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	select {
	case <-p.done:
	case <-time.After(stopTimeout):
		log.Printf("Service did not stop within %v", stopTimeout)
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Export channel configuration on /metrics or push it to NATS JetStream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcAction, _ := cmd.Flags().GetString("service")
			pushMode, _ := cmd.Flags().GetBool("push")

			prg := &program{run: func(ctx context.Context) error {
				if pushMode {
					return a.runPush(ctx)
				}
				return a.runHTTP(ctx)
			}}
			if svcAction == "" && a.interactive != nil && a.interactive() {
				if err := prg.run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			s, err := service.New(prg, serviceConfig(cmd, pushMode))
			if err != nil {
				return fmt.Errorf("cannot create service: %w", err)
			}

			if svcAction != "" {
				if err := service.Control(s, svcAction); err != nil {
					log.Printf("Valid service actions: %v", service.ControlAction)
					return err
				}
				log.Printf("Service action '%s' executed successfully.", svcAction)
				return nil
			}
			return s.Run()
		},
	}

	config.BindServeFlags(cmd)
	f := cmd.Flags()
	f.String("service", "", "Install/uninstall/start/stop/restart the Windows service (example: --service=install)")
	f.Bool("push", false, "Enable push mode (publish to NATS JetStream)")
	return cmd
}

// serviceConfig makes the installed service run `welc serve` with the same
// config file and mode.
func serviceConfig(cmd *cobra.Command, pushMode bool) *service.Config {
	args := []string{"serve"}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		args = append(args, "--config", path)
	}
	if pushMode {
		args = append(args, "--push")
	}
	return &service.Config{
		Name:        "WinEventLogCustomization",
		DisplayName: "Windows Event Log Customization Exporter",
		Description: "Exports event log channel configuration in Prometheus format (either push mode or scrape).",
		Arguments:   args,
	}
}

func (a *app) filters() (channels, providers collectors.Filter, err error) {
	if channels, err = collectors.NewFilter(a.cfg.Channels...); err != nil {
		return
	}
	providers, err = collectors.NewFilter(a.cfg.Providers...)
	return
}

// runHTTP serves /metrics on the configured port until ctx is done.
func (a *app) runHTTP(ctx context.Context) error {
	channels, providers, err := a.filters()
	if err != nil {
		return err
	}
	return a.withSession(func(s session) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewCollector(s, collectors.SystemName(a.cfg.SystemName), channels, providers, 0))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Printf("Starting HTTP server on %s...", srv.Addr)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("HTTP server failed: %w", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	})
}

// runPush publishes snapshots to NATS JetStream until ctx is done.
func (a *app) runPush(ctx context.Context) error {
	channels, providers, err := a.filters()
	if err != nil {
		return err
	}
	js, closeNATS, err := push.Connect(a.cfg.NatsURL)
	if err != nil {
		return err
	}
	defer closeNATS()

	return a.withSession(func(s session) error {
		snapshot := func(ctx context.Context) (welc.EventLogChannel, error) {
			return collectors.CollectConfigured(ctx, s, channels, providers)
		}
		p, err := push.NewPusher(js, a.cfg.NatsSubject, collectors.SystemName(a.cfg.SystemName), a.cfg.PushInterval, snapshot)
		if err != nil {
			return err
		}
		return p.Run(ctx)
	})
}
