package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	ecfanapiv1alpha1 "github.com/uptime-induestries/ecfan-agent/api/ecfanapi/v1alpha1"
	"github.com/uptime-induestries/ecfan-agent/internal/agent"
	"github.com/uptime-induestries/ecfan-agent/pkg/log"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var configFile = flag.String("config", "", "path to the agent configuration file")

var errShutdownSignal = errors.New("shutdown signal received")

func main() {
	var wg sync.WaitGroup
	flag.Parse()

	// setup logger
	zapLogger := zap.Must(zap.NewDevelopment()).With(zap.String("app", "ecfan-agent"))
	_ = zap.ReplaceGlobals(zapLogger.With(zap.String("scope", "global")))
	baseCtx := log.IntoContext(context.Background(), zapLogger)

	ctx, cancelCtx := context.WithCancelCause(baseCtx)
	defer cancelCtx(context.Canceled)

	cfg, err := loadConfig()
	if err != nil {
		log.FromContext(ctx).Fatal("Failed to load configuration", zap.Error(err))
	}

	ecfanAgent, err := agent.NewEcFanAgent(ctx, cfg)
	if err != nil {
		log.FromContext(ctx).Fatal("Failed to create agent", zap.Error(err))
	}

	// setup stop signal handlers
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Wait for context cancel or signal
		select {
		case <-ctx.Done():
		case sig := <-sigs:
			// On signal, cancel context
			cancelCtx(fmt.Errorf("%w: %s", errShutdownSignal, sig))
		}
	}()

	// Run agent
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := ecfanAgent.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.FromContext(ctx).Error("Failed to run agent", zap.Error(err))
			cancelCtx(err)
		}
	}()

	// setup gRPC server
	grpcServer := grpc.NewServer()
	ecfanapiv1alpha1.RegisterEcFanAgentServiceServer(grpcServer, agent.NewGrpcServiceFor(ecfanAgent))
	wg.Add(1)
	go func() {
		defer wg.Done()
		lis, err := listen(cfg.Listen)
		if err != nil {
			log.FromContext(ctx).Error("Failed to listen for gRPC", zap.Error(err))
			cancelCtx(err)
			return
		}
		log.FromContext(ctx).Info("Starting gRPC server", zap.String("addr", cfg.Listen))
		if err := grpcServer.Serve(lis); err != nil {
			log.FromContext(ctx).Error("Failed to serve gRPC", zap.Error(err))
			cancelCtx(err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	// setup prometheus endpoint
	promHandler := http.NewServeMux()
	promHandler.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: promHandler}
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.FromContext(ctx).Error("Failed to start prometheus server", zap.Error(err))
			cancelCtx(err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.FromContext(ctx).Error("Failed to shutdown prometheus server", zap.Error(err))
		}
	}()

	// Wait for context cancel
	wg.Wait()
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errShutdownSignal) {
		log.FromContext(ctx).Fatal("Exiting", zap.Error(err))
	} else {
		log.FromContext(ctx).Info("Exiting")
	}
}

func loadConfig() (agent.EcFanAgentConfig, error) {
	v := viper.New()
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("ecfan-agent")
		v.AddConfigPath("/etc/ecfan-agent")
		v.AddConfigPath("$HOME/.config/ecfan-agent")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return agent.EcFanAgentConfig{}, err
		}
	}
	return agent.LoadConfig(v)
}

// listen opens a listener for unix:///path or tcp://host:port addresses
func listen(addr string) (net.Listener, error) {
	switch {
	case strings.HasPrefix(addr, "unix://"):
		path := strings.TrimPrefix(addr, "unix://")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
		return net.Listen("unix", path)
	case strings.HasPrefix(addr, "tcp://"):
		return net.Listen("tcp", strings.TrimPrefix(addr, "tcp://"))
	default:
		return nil, fmt.Errorf("unsupported listen address %q", addr)
	}
}
