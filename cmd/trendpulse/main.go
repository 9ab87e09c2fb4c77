package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trendpulse/pkg/contracts"
)

var (
	cfgFile string
	dataDir string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trendpulse",
		Short:         "OTT trend dashboard over collected trend, blog and news exports",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory holding datalab/, blog/ and news/")

	root.AddCommand(serveCmd())
	root.AddCommand(keywordsCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(exportCmd())

	return root
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func keywordsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List known keywords and the default selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywords(cmd.Context(), cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func summaryCmd() *cobra.Command {
	var (
		filter     filterFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show trend statistics and content counts for a selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.Context(), cmd.OutOrStdout(), filter, jsonOutput)
		},
	}

	filter.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the full dashboard view as JSON")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		filter   filterFlags
		category string
		format   string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one filtered category table as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), filter, category, format, out)
		},
	}

	filter.register(cmd)
	cmd.Flags().StringVar(&category, "category", "trend", "category to export: trend, blog or news")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: <export_dir>/trendpulse_<category>.<format>)")
	return cmd
}
