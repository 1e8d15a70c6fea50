package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/ZacxDev/agency-prerender/logging"
	"github.com/ZacxDev/agency-prerender/preview"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prerendered output",
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		port, _ := cmd.Flags().GetString("port")
		server := &http.Server{
			Addr:              ":" + port,
			Handler:           preview.Handler(site.OutDir, nil),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-cmd.Context().Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		logger.Info("Starting server", zap.String("dir", site.OutDir), zap.String("addr", "http://localhost:"+port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serving")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "9010", "Port to run the server on")
}
