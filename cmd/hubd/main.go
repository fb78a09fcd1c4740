package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/cuemby/hub/api/pb"
	"github.com/cuemby/hub/internal/bootstrap"
	"github.com/cuemby/hub/internal/fabric"
	"github.com/cuemby/hub/internal/hub"
	"github.com/cuemby/hub/internal/livez"
	"github.com/cuemby/hub/internal/prober"
	"github.com/cuemby/hub/internal/registry"
	"github.com/cuemby/hub/pkg/log"
	"github.com/cuemby/hub/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "hubd",
	Short:   "hubd - gRPC service registry and discovery hub",
	Long:    `hubd runs the Hub: a single-process, non-persistent service registry, broadcast fabric, subscription manager, and health prober, reachable over gRPC.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("hubd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Hub's RPC Surface and liveness endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("rpc-addr", "0.0.0.0:9090", "gRPC listen address for the RPC Surface")
	serveCmd.Flags().String("livez-addr", "127.0.0.1:9091", "HTTP listen address for /health, /ready, /metrics")
	serveCmd.Flags().Bool("docker-loopback-rewrite", false, "Rewrite 127.0.0.1 instance addresses to host.docker.internal before probing")
	serveCmd.Flags().String("bootstrap-file", "", "Optional YAML manifest of instances to pre-register at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	rpcAddr, _ := cmd.Flags().GetString("rpc-addr")
	livezAddr, _ := cmd.Flags().GetString("livez-addr")
	dockerRewrite, _ := cmd.Flags().GetBool("docker-loopback-rewrite")
	bootstrapFile, _ := cmd.Flags().GetString("bootstrap-file")

	metrics.RegisterComponent("registry", true, "ready")
	metrics.RegisterComponent("fabric", true, "ready")
	metrics.RegisterComponent("api", false, "initializing")

	store := registry.New()
	fab := fabric.New(log.Logger)
	h := hub.New(store, fab, hub.Config{
		Prober: prober.Config{DockerLoopbackRewrite: dockerRewrite},
	}, log.Logger)

	collector := metrics.NewCollector(store, fab)
	collector.Start()
	defer collector.Stop()

	livezServer := livez.New()
	go func() {
		log.Info(fmt.Sprintf("liveness endpoint listening on %s", livezAddr))
		if err := livezServer.Start(livezAddr); err != nil {
			log.Errorf("liveness server error: %v", err)
		}
	}()

	if bootstrapFile != "" {
		if err := seedFromFile(h, bootstrapFile); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}

	lis, err := net.Listen("tcp", rpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", rpcAddr, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterServiceRegistryServer(grpcServer, h)

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("RPC Surface listening on %s", rpcAddr))
		errCh <- grpcServer.Serve(lis)
	}()

	metrics.RegisterComponent("api", true, "ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("RPC Surface stopped: %w", err)
	case sig := <-sigCh:
		log.Info(fmt.Sprintf("received signal %s, shutting down", sig))
		grpcServer.GracefulStop()
	}

	return nil
}

func seedFromFile(h *hub.Hub, path string) error {
	manifest, err := bootstrap.Load(path)
	if err != nil {
		return err
	}

	for _, inst := range manifest.Instances() {
		status, err := h.RegisterService(context.Background(), inst)
		if err != nil {
			return fmt.Errorf("register %s/%s: %w", inst.Name, inst.Id, err)
		}
		log.Info(fmt.Sprintf("bootstrap: registered %s/%s: %s", inst.Name, inst.Id, status.Message))
	}
	return nil
}
