package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/orgscan/service"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

var (
	serveListen  string
	serveMetrics string
)

// serveCmd runs the inventory pipeline behind an HTTP endpoint
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve inventory requests over HTTP",
	Long: `Serve accepts inventory requests as JSON on POST /v1/inventory and
runs each one through the full pipeline. Run metrics are exposed for
Prometheus scraping on a separate listener.`,
	Example: `  orgscan serve
  orgscan serve --listen :8080 --metrics :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "Request API listen address")
	serveCmd.Flags().StringVar(&serveMetrics, "metrics", ":9090", "Metrics listen address")
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging()
	logger := telemetry.NewLogger("serve")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	shutdown, metrics, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "orgscan",
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	svc := service.NewFromConfig(awsCfg, cfg, metrics)

	apiServer := &http.Server{
		Addr:              serveListen,
		Handler:           apiHandler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              serveMetrics,
		Handler:           metricsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var group run.Group
	group.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	group.Add(func() error {
		logger.Info().Str("addr", serveListen).Msg("starting request API")
		return apiServer.ListenAndServe()
	}, func(error) {
		shutdownServer(apiServer, logger)
	})
	group.Add(func() error {
		logger.Info().Str("addr", serveMetrics).Msg("starting metrics server")
		return metricsServer.ListenAndServe()
	}, func(error) {
		shutdownServer(metricsServer, logger)
	})

	err = group.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		logger.Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
		return nil
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// inventoryRunner is the slice of the service the API needs.
type inventoryRunner interface {
	Run(ctx context.Context, req *types.InventoryRequest) (*types.InventoryResponse, error)
}

func apiHandler(svc inventoryRunner, logger *telemetry.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/inventory", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.InventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}

		resp, err := svc.Run(r.Context(), &req)
		if err != nil {
			logger.Error().Err(err).Msg("inventory run failed")
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn().Err(err).Msg("writing response failed")
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	return mux
}

// statusFor maps pipeline failure kinds to HTTP status codes.
func statusFor(err error) int {
	var invalid *types.InvalidRequestError
	var notFound *types.NotFoundError
	var deliveryErr *types.DeliveryError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &deliveryErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func shutdownServer(server *http.Server, logger *telemetry.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown failed")
	}
}
