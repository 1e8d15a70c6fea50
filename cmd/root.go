package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "agency-prerender",
	Short: "Prerender the agency site into static, SEO-ready pages",
	Long: `agency-prerender renders every configured route, injects the markup into the
built index.html, rewrites the localized title, description, canonical, Open
Graph, Twitter and hreflang tags, and writes <out_dir>/<route>/index.html.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPrerender,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "site manifest (defaults to ./prerender.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
