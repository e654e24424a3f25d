package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/pool"
	"github.com/polygate-dev/polygate/internal/server"
)

var serveFlags struct {
	host      string
	port      int
	poolsFile string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Flags beat environment.
		if cmd.Flags().Changed("host") {
			cfg.Host = serveFlags.host
		}
		if cmd.Flags().Changed("port") {
			cfg.ServerPort = serveFlags.port
		}
		if cmd.Flags().Changed("pools") {
			cfg.ProviderPoolsFilePath = serveFlags.poolsFile
		}

		p := pool.New(cfg.MaxErrorCount)
		entries, err := pool.LoadFile(cfg.ProviderPoolsFilePath)
		if err != nil {
			return err
		}
		p.Replace(entries)

		srv := server.NewServer(cfg, p)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-stop
			logrus.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logrus.Errorf("shutdown: %v", err)
			}
		}()

		return srv.Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "0.0.0.0", "listen address")
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 3000, "listen port")
	serveCmd.Flags().StringVar(&serveFlags.poolsFile, "pools", "provider_pools.json", "provider pool file path")
	rootCmd.AddCommand(serveCmd)
}
