package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"funnelboard/adapters/canvas"
	"funnelboard/adapters/excel"
	"funnelboard/app"
	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal"
	"funnelboard/internal/config"
	"funnelboard/internal/container"
	"funnelboard/internal/queries"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "funnelctl",
		Short: "Render, summarise and export funnels from the command line",
		Long: `funnelctl reads funnels from the same sources as the dashboard
(DATABASE_URL, FUNNEL_XLSX, REMOTE_DASHBOARD_URL, or the demo funnel).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRenderCmd(),
		newExportCmd(),
		newSummaryCmd(),
		newQueriesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRenderCmd() *cobra.Command {
	var format string
	var sizes []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "render [funnel]",
		Short: "Draw a funnel pyramid to image files, one per size",
		Long: `Draw a funnel pyramid at one or more sizes. Every size gets its own
freshly laid out surface, as when the dashboard canvas is resized.

Example: funnelctl render account-creation --format png --size 800x400 --size 1200x400`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], format, sizes, outDir)
		},
	}

	cmd.Flags().StringVar(&format, "format", "svg", "Output format: svg|png|json")
	cmd.Flags().StringArrayVar(&sizes, "size", []string{"800x400"}, "Canvas size as WIDTHxHEIGHT (repeatable)")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [funnel]",
		Short: "Write a funnel's conversion summary to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0], out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default <funnel>.xlsx)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary [funnel]",
		Short: "Print per-stage conversion for a funnel, or every funnel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runSummary(cmd.Context(), name, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newQueriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries [id]",
		Short: "List the SQL catalog, or print one query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := queries.Default()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDATABASE")
				for _, q := range catalog.List() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", q.ID, q.Name, q.Database)
				}
				return w.Flush()
			}
			q, err := catalog.Get(core.QueryID(args[0]))
			if err != nil {
				return fmt.Errorf("query %q: %w", args[0], err)
			}
			fmt.Printf("-- %s (%s)\n%s\n", q.Name, q.Database, q.Query)
			return nil
		},
	}
	return cmd
}

// loadContainer wires sources the same way the dashboard does
func loadContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg, internal.NewDefaultLogger())
	if err != nil {
		return nil, err
	}
	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := c.InitWithDatabase(db); err != nil {
			return nil, err
		}
	}
	if err := c.InitSources(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func runRender(ctx context.Context, rawName, rawFormat string, rawSizes []string, outDir string) error {
	format, err := canvas.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	areas, err := parseSizes(rawSizes)
	if err != nil {
		return err
	}
	name, err := core.ParseFunnelName(rawName)
	if err != nil {
		return err
	}

	c, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	spec, err := c.Funnels.Get(ctx, name)
	if err != nil {
		return err
	}

	svc := container.ServiceConfig(c.Config)
	newSurface := func(area funnel.Area) (funnel.Surface, error) {
		return canvas.New(format, area)
	}
	viewport := app.NewViewport(spec, svc.Layout, svc.Text, newSurface, func(frame app.Frame) error {
		path := filepath.Join(outDir, frameFileName(name, frame.Area, format))
		return writeFrame(path, frame.Surface.(canvas.Target))
	})

	for _, area := range areas {
		if _, err := viewport.Resize(area); err != nil {
			return fmt.Errorf("render %gx%g: %w", area.Width, area.Height, err)
		}
		fmt.Println(filepath.Join(outDir, frameFileName(name, area, format)))
	}
	return nil
}

func writeFrame(path string, target canvas.Target) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := target.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runExport(ctx context.Context, rawName, out string) error {
	name, err := core.ParseFunnelName(rawName)
	if err != nil {
		return err
	}
	c, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	summary, err := c.Funnels.Summary(ctx, name)
	if err != nil {
		return err
	}
	if out == "" {
		out = name.String() + ".xlsx"
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := excel.WriteSummary(f, summary); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runSummary(ctx context.Context, rawName string, asJSON bool) error {
	c, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	results, err := c.Funnels.LoadAll(ctx)
	if err != nil {
		return err
	}
	if rawName != "" {
		name, err := core.ParseFunnelName(rawName)
		if err != nil {
			return err
		}
		filtered := results[:0]
		for _, r := range results {
			if r.Name == name {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			return core.NewFunnelNotFoundError(name.String())
		}
		results = filtered
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range results {
		if r.Summary == nil {
			fmt.Fprintf(w, "%s\terror: %s\n\n", r.Name, r.Error)
			continue
		}
		s := r.Summary
		fmt.Fprintf(w, "%s\t(total %s, overall %.1f%%)\n", s.Name, p.Sprintf("%d", int64(s.Total)), s.OverallConversionPct)
		fmt.Fprintln(w, "STAGE\tUSERS\tCOMPLETION\tSTEP\tDROP-OFF")
		for _, st := range s.Stages {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.1f%%\t%s\n",
				st.Label, p.Sprintf("%d", int64(st.Value)), st.CompletionPct, st.StepConversionPct, p.Sprintf("%d", int64(st.DropOff)))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
