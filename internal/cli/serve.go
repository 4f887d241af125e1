package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat web UI and HTTP API",
	Long:  `Start a web server serving the chat widget, the JSON chat API, memory views, the debug event stream and Prometheus metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config, 7860)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (default from config, localhost)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.Config, a.Bot, a.Bus, a.Logger).WithVersion(Version)
	if a.Config.Search.IsEnabled() {
		srv.WithNews(a.News())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	host, port := a.Config.Server.Host, a.Config.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}
	return srv.Start(ctx, fmt.Sprintf("%s:%d", host, port))
}
