package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"heartpanel/internal"
	"heartpanel/internal/config"
	"heartpanel/internal/container"
	"heartpanel/internal/pipeline"
	"heartpanel/internal/query"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "heartpanel",
		Short:         "Heart disease panel ETL and query tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("HEARTPANEL_CONFIG"), "optional YAML configuration file")

	cfg := func() string { return cfgFile }
	rootCmd.AddCommand(
		newETLCmd(cfg),
		newQueryCmd(cfg),
		newIndexCmd(cfg),
		newMetricsCmd(cfg),
		newRunsCmd(cfg),
	)
	return rootCmd
}

// openContainer loads configuration and opens every configured store
func openContainer(ctx context.Context, cfgFile string) (*container.Container, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newETLCmd(cfgFile func() string) *cobra.Command {
	var manifestPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Build the canonical panel from the source manifest",
		Long: `Read every source named in the manifest, harmonize entity names, merge,
pivot, impute, apply overrides and write the canonical panel and its report.

Example: heartpanel etl --manifest data/sources.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runETL(cmd.Context(), cmd.OutOrStdout(), cfgFile(), manifestPath, quiet)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "source manifest (defaults to data.manifest_path)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print stage progress")
	return cmd
}

func runETL(ctx context.Context, out io.Writer, cfgFile, manifestPath string, quiet bool) error {
	c, err := openContainer(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	if manifestPath == "" {
		manifestPath = c.Config.Data.ManifestPath
	}
	m, err := pipeline.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	progress := func(stage string) {
		if !quiet {
			fmt.Fprintf(out, "  %s\n", stage)
		}
	}
	res, err := c.Pipeline(m, progress).Execute(ctx)
	if err != nil {
		return err
	}

	rm := res.Manifest
	fmt.Fprintf(out, "run %s: %d rows, %d columns, %d entities, %d cells imputed in %s\n",
		rm.RunID, rm.Rows, rm.Columns, rm.Entities, rm.CellsFilled, rm.Duration())
	if rm.ReportPath != "" {
		fmt.Fprintf(out, "report: %s\n", rm.ReportPath)
	}
	return nil
}

func newQueryCmd(cfgFile func() string) *cobra.Command {
	var p query.FilterParams
	var view string
	var countries []string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the canonical panel and print the result as JSON",
		Long: `Filter the canonical panel by year, region, income group, demographic slice,
metric, age group and cause. --view selects a dashboard projection instead of the
raw filter: worldmap, geoeco, healthcare, sankey, risk or trends.

Example: heartpanel query --year 2019 --regions Americas --gender female --metric "Death Rate"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cmd.OutOrStdout(), cfgFile(), p, view, countries)
		},
	}

	cmd.Flags().IntVar(&p.Year, "year", 0, "year to select")
	cmd.Flags().StringSliceVar(&p.Regions, "regions", nil, "regions, comma separated (All selects every region)")
	cmd.Flags().StringVar(&p.Income, "income", "", "World Bank income group")
	cmd.Flags().StringVar(&p.Gender, "gender", "", "demographic slice: both|female|male")
	cmd.Flags().StringVar(&p.Metric, "metric", "", "metric label, e.g. \"Death Rate\"")
	cmd.Flags().StringVar(&p.Age, "age", "", "age group")
	cmd.Flags().StringVar(&p.Cause, "cause", "", "cause of death")
	cmd.Flags().StringVar(&view, "view", "", "dashboard view: worldmap|geoeco|healthcare|sankey|risk|trends")
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "countries for the geoeco and healthcare views")
	return cmd
}

func runQuery(ctx context.Context, out io.Writer, cfgFile string, p query.FilterParams, view string, countries []string) error {
	c, err := openContainer(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	store := c.QueryStore()

	var res *query.Result
	switch view {
	case "":
		res, err = store.Filter(ctx, p)
	case "worldmap":
		res, err = store.WorldMap(ctx, p)
	case "geoeco":
		res, err = store.GeoEco(ctx, p, countries)
	case "healthcare":
		res, err = store.Healthcare(ctx, p, countries)
	case "sankey":
		res, err = store.Sankey(ctx, p.Regions, p.Income, p.Gender, p.Metric)
	case "risk":
		res, err = store.Risk(ctx, p.Gender, p.Metric)
	case "trends":
		res, err = store.Trends(ctx, p.Gender, p.Metric)
	default:
		return fmt.Errorf("unknown view %q", view)
	}
	if err != nil {
		return err
	}
	return printJSON(out, res)
}

func newIndexCmd(cfgFile func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Print the distinct regions, incomes, entities, ages, causes and year range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfgFile())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			ix, err := c.QueryStore().Index(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ix)
		},
	}
}

func newMetricsCmd(cfgFile func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the metric labels the query layer understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context(), cfgFile())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			for _, label := range c.Catalog.Labels() {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}
}

func newRunsCmd(cfgFile func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List pipeline runs saved in the SQL store, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfgFile())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if c.SQL == nil {
				return fmt.Errorf("no SQL store configured (set store.driver and store.dsn)")
			}
			ids, err := c.SQL.Runs(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
