package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timeless-fi/timeless/config"
	"github.com/timeless-fi/timeless/native/factory"
	"github.com/timeless-fi/timeless/native/gate"
	"github.com/timeless-fi/timeless/observability/logging"
	"github.com/timeless-fi/timeless/observability/metrics"
	"github.com/timeless-fi/timeless/storage"
)

// moduleAddress derives a stable in-process address for a named module.
func moduleAddress(name string) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("timeless/module/" + name))[12:])
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	ownerHex := flag.String("owner", "", "Hex address of the factory owner (required)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Service, cfg.Environment)

	if !common.IsHexAddress(*ownerHex) {
		logger.Error("missing or invalid -owner address")
		os.Exit(1)
	}
	owner := common.HexToAddress(*ownerHex)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "gate"))
	if err != nil {
		logger.Error("open state database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	gateMetrics := metrics.New(registry)

	f, err := factory.New(moduleAddress("factory"), owner, factory.WithLogger(logger))
	if err != nil {
		logger.Error("construct factory", "error", err)
		os.Exit(1)
	}
	feeInfo, err := cfg.Global.FeeInfo()
	if err != nil {
		logger.Error("parse protocol fee", "error", err)
		os.Exit(1)
	}
	if feeInfo.FeeSteps != 0 {
		if err := f.SetProtocolFee(owner, feeInfo); err != nil {
			logger.Error("apply protocol fee", "error", err)
			os.Exit(1)
		}
	}

	g, err := gate.New(
		moduleAddress("gate"),
		gate.NewKVState(db),
		f,
		gate.WithLogger(logger),
		gate.WithMetrics(gateMetrics),
		gate.WithPauses(cfg.Global.Pauses),
	)
	if err != nil {
		logger.Error("construct gate", "error", err)
		os.Exit(1)
	}
	logger.Info("gate engine ready", "address", g.Address().Hex(), "dataDir", cfg.DataDir)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.MetricsAddress, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listener up", "address", cfg.MetricsAddress)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown metrics listener", "error", err)
	}
}
