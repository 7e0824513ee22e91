package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"contactdb/pkg/api"
	"contactdb/pkg/core"
	"contactdb/pkg/network"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveHTTPAddr string
	serveTCPAddr  string
)

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveHTTPAddr, "http", "", "HTTP listen address (overrides server.addr)")
	cmd.Flags().StringVar(&serveTCPAddr, "tcp", "", "TCP listen address (overrides server.tcp_addr)")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and TCP servers",
		Long: `The serve command loads the directory from storage and exposes it over
JSON/HTTP and the binary TCP protocol until interrupted. On shutdown the
directory is saved when storage.save_on_close is set.

Example:
  contactdb serve
  contactdb serve --http :8081 --tcp :9091 --no-phone-index`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHTTPAddr != "" {
		cfg.Server.Addr = serveHTTPAddr
	}
	if serveTCPAddr != "" {
		cfg.Server.TCPAddr = serveTCPAddr
	}

	store, err := core.Open(cfg)
	if err != nil {
		return err
	}
	st := store.Stats()
	log.Printf("[ContactDB] %d contacts loaded (name index: %v, phone index: %v)",
		st.TotalContacts, st.NameIndexEnabled, st.PhoneIndexEnabled)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := api.NewServer(store)
	tcpSrv := network.NewTCPServer(store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Start(cfg.Server.Addr) })
	g.Go(func() error { return tcpSrv.Start(cfg.Server.TCPAddr) })
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[ContactDB] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		return tcpSrv.Close()
	})

	runErr := g.Wait()
	if err := store.Close(); err != nil {
		log.Printf("[ContactDB] Close error: %v", err)
	}
	return runErr
}
