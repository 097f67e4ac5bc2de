package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/server"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset, library and comparison API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		opt := server.DefaultOptions()
		opt.ConfigsDir = c.ConfigsDir
		opt.Bins = c.HistogramBins
		opt.Sigma = c.BoundsSigma
		opt.IQRFactor = c.IQRFactor
		opt.MaxUploadBytes = int64(c.MaxUploadMB) << 20
		opt.CompareWorkers = c.CompareWorkers

		srv := server.New(store.New(parser.ParseFile), lib, opt, newLogger(c))
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}
