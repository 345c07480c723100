// Package serve implements the long-running monitoring service command.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskwatch/internal/api"
	"diskwatch/internal/conf"
	"diskwatch/internal/logging"
	"diskwatch/internal/monitor"
	"diskwatch/internal/observability"
	"diskwatch/internal/publish"
)

const shutdownTimeout = 5 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the monitoring service",
		Long:  "Poll every configured filesystem on an interval and expose the results over HTTP, Prometheus and optionally NATS.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.HTTP.Host, "host", viper.GetString("http.host"), "HTTP listen host")
	cmd.Flags().StringVar(&settings.HTTP.Port, "port", viper.GetString("http.port"), "HTTP listen port")
	cmd.Flags().BoolVar(&settings.NATS.Enabled, "nats", viper.GetBool("nats.enabled"), "Publish snapshots to NATS JetStream")
	cmd.Flags().StringVar(&settings.NATS.URL, "nats-url", viper.GetString("nats.url"), "NATS server URL")

	_ = viper.BindPFlags(cmd.Flags())
}

func run(settings *conf.Settings) error {
	log := logging.ForService("serve")

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	mon := monitor.NewFilesystemMonitor(settings, metrics)

	var publisher *publish.NATSPublisher
	if settings.NATS.Enabled {
		publisher, err = publish.NewNATSPublisher(settings.NATS)
		if err != nil {
			return err
		}
		defer publisher.Close()
		mon.SetPublisher(publisher)
	}

	mon.Start()
	defer mon.Stop()

	var server *api.Server
	errChan := make(chan error, 1)
	if settings.HTTP.Enabled {
		server = api.NewServer(settings, mon, metrics)
		go func() {
			errChan <- server.Start()
		}()
	} else {
		log.Info("HTTP server disabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("HTTP server shutdown", "error", err)
		}
	}
	return nil
}
