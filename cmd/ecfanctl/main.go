package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	ecfanapiv1alpha1 "github.com/uptime-induestries/ecfan-agent/api/ecfanapi/v1alpha1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type grpcClientContextKey int

const (
	defaultGrpcClientContextKey grpcClientContextKey = 0
)

var (
	grpcAddr string
	timeout  time.Duration
)

func init() {
	rootCmd.PersistentFlags().
		StringVar(&grpcAddr, "addr", "unix:///tmp/ecfan-agent.sock", "address of the ecfan-agent gRPC server")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "timeout for gRPC requests")
}

func clientIntoContext(ctx context.Context, client ecfanapiv1alpha1.EcFanAgentServiceClient) context.Context {
	return context.WithValue(ctx, defaultGrpcClientContextKey, client)
}

func clientFromContext(ctx context.Context) ecfanapiv1alpha1.EcFanAgentServiceClient {
	client, ok := ctx.Value(defaultGrpcClientContextKey).(ecfanapiv1alpha1.EcFanAgentServiceClient)
	if !ok {
		panic("grpc client not found in context")
	}
	return client
}

var rootCmd = &cobra.Command{
	Use:   "ecfanctl",
	Short: "ecfanctl interacts with the ecfan-agent and allows you to inspect and program the EC fan curves",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		origCtx := cmd.Context()

		// setup signal handlers for SIGINT and SIGTERM
		ctx, cancelCtx := context.WithTimeout(origCtx, timeout)

		// setup signal handler channels
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			// Wait for context cancel or signal
			select {
			case <-ctx.Done():
			case <-sigs:
				// On signal, cancel context
				cancelCtx()
			}
		}()

		conn, err := grpc.Dial(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("failed to dial grpc server: %w", err)
		}
		client := ecfanapiv1alpha1.NewEcFanAgentServiceClient(conn)

		cmd.SetContext(clientIntoContext(ctx, client))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
