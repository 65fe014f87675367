// Package main provides the entry point for netfailoverd, a multi-uplink
// failover daemon: it monitors a set of network interfaces, keeps the
// kernel default route pointed at the healthiest preferred uplink, and
// exposes its state over gRPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/crepric/netfailoverd/internal/application/healthmonitor"
	"github.com/crepric/netfailoverd/internal/application/policy"
	"github.com/crepric/netfailoverd/internal/application/queryfacade"
	"github.com/crepric/netfailoverd/internal/application/routemanager"
	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
	"github.com/crepric/netfailoverd/internal/infrastructure/applog"
	"github.com/crepric/netfailoverd/internal/infrastructure/config/yamlconfig"
	"github.com/crepric/netfailoverd/internal/infrastructure/probe"
	"github.com/crepric/netfailoverd/internal/infrastructure/transport/grpcapi"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	flag.StringVar(&configPath, "config", "/etc/netfailoverd/config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("netfailoverd %s\n", version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// daemon bundles the components a SIGHUP reload or SIGTERM shutdown needs
// to reach, in the order §4.J requires them stopped: RPC Transport, then
// Route Manager, then Health Monitor.
type daemon struct {
	loader *yamlconfig.Loader
	health *healthmonitor.Monitor
	routes *routemanager.Manager
	policy *policy.Policy
	rpc    *grpcapi.Server

	monitoredInterfaces []string
}

func run() error {
	loader := yamlconfig.New()
	cfg, err := loader.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := applog.New(cfg.Logging)

	d, err := build(cfg, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to build daemon: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	d.health.StartChecks()
	d.routes.StartChecks()
	d.rpc.MarkServing()

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- d.rpc.Serve()
	}()

	logger.Info("netfailoverd started",
		"listen_address", cfg.RPC.ListenAddress,
		"monitored_interfaces", cfg.MonitoredInterfaces)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				d.reload(logger)
			case syscall.SIGTERM, syscall.SIGINT:
				cancel()
				d.shutdown(logger)
				return nil
			}
		case err := <-serveErrCh:
			if err != nil {
				logger.Error("rpc server exited", "error", err)
			}
			d.shutdown(logger)
			return err
		case <-ctx.Done():
			d.shutdown(logger)
			return nil
		}
	}
}

// build wires every component in dependency order: Probe, Health Monitor,
// Route Manager, Failover Policy, Query Facade, RPC Transport.
func build(cfg *failoverconfig.Config, loader *yamlconfig.Loader, logger *slog.Logger) (*daemon, error) {
	target, err := netip.ParseAddr(cfg.ProbeAnchor)
	if err != nil {
		return nil, fmt.Errorf("invalid probe_anchor %q: %w", cfg.ProbeAnchor, err)
	}

	prober := probe.New(probe.Config{
		Mode:                 probe.ModeAuto,
		Target:               target,
		BindToInterface:      true,
		PerPingTimeout:       cfg.ProbeTimeout,
		WindowDuration:       cfg.ProbeDuration,
		Interval:             cfg.ProbeInterval,
		LossThresholdPercent: cfg.ProbeLossThresholdPct,
	})

	healthMon := healthmonitor.New(cfg.MonitoredInterfaces, prober, cfg.HealthCheckInterval, logger)

	adapter := newRoutingAdapter()
	routeMgr := routemanager.New(adapter, cfg.RouteSyncInterval, logger)

	pol := policy.New(healthMon, routeMgr, logger)
	if status := pol.SetPreferredGatewayInterfaces(cfg.PreferenceOrder); !status.IsOk() {
		return nil, fmt.Errorf("invalid preference_order: %s", status.Message())
	}

	facade := queryfacade.New(healthMon, routeMgr)
	rpc := grpcapi.New(facade, cfg.RPC.ListenAddress, cfg.RPC.DrainTimeout, logger)

	return &daemon{
		loader:              loader,
		health:              healthMon,
		routes:              routeMgr,
		policy:              pol,
		rpc:                 rpc,
		monitoredInterfaces: cfg.MonitoredInterfaces,
	}, nil
}

// reload implements SIGHUP handling per §4.J: preference_order changes
// apply live, but a changed monitored_interfaces list requires a restart
// and is only logged.
func (d *daemon) reload(logger *slog.Logger) {
	cfg, err := d.loader.Reload()
	if err != nil {
		logger.Error("reload failed", "error", err)
		return
	}

	if !sameSet(cfg.MonitoredInterfaces, d.monitoredInterfaces) {
		logger.Warn("monitored_interfaces changed on reload; restart the daemon to apply it",
			"configured", cfg.MonitoredInterfaces, "running", d.monitoredInterfaces)
	}

	if status := d.policy.SetPreferredGatewayInterfaces(cfg.PreferenceOrder); !status.IsOk() {
		logger.Error("reload: invalid preference_order", "error", status.Message())
		return
	}

	logger.Info("configuration reloaded", "preference_order", cfg.PreferenceOrder)
}

// shutdown stops components in reverse dependency order: RPC Transport,
// then Route Manager, then Health Monitor.
func (d *daemon) shutdown(logger *slog.Logger) {
	logger.Info("shutting down")
	d.rpc.Stop()
	d.routes.StopChecks()
	d.health.StopChecks()
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, name := range a {
		seen[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := seen[name]; !ok {
			return false
		}
	}
	return true
}
