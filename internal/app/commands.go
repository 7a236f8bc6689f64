package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/aidigest/internal/config"
	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/model"
	"github.com/deusflow/aidigest/internal/rss"
	"github.com/deusflow/aidigest/internal/server"
)

// Clock is the time source used by every command. Tests replace it.
var Clock dates.Clock = dates.SystemClock{}

// NewRootCommand builds the aidigest CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "aidigest",
		Short:         "Daily AI industry digest",
		Long:          "Serves and maintains the daily AI industry digest backed by per-date JSON snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newServeCommand(),
		newShowCommand(),
		newSaveCommand(),
		newDatesCommand(),
		newImportCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// withApp loads configuration, wires the app and runs fn with it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Debug, cfg.LogFormat)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := New(ctx, cfg, Clock)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if port == "" {
					port = a.Config.Port
				}
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				logger.Info("AI digest server starting",
					"storage", a.Config.StorageBackend,
					"data_dir", a.Config.DataDir,
					"port", port,
				)
				return server.Serve(ctx, ":"+port, server.NewRouter(a.Service, a.Metrics))
			})
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from PORT)")
	return cmd
}

func newShowCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the processed digest for a date as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return writeJSON(cmd.OutOrStdout(), a.Service.GetInsights(ctx, date))
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD or YYYY年MM月DD日 (default today)")
	return cmd
}

func newSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file|->",
		Short: "Store a digest JSON document under the date it carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var ds model.Dataset
			if err := json.NewDecoder(r).Decode(&ds); err != nil {
				return fmt.Errorf("failed to decode dataset: %w", err)
			}

			return withApp(cmd, func(ctx context.Context, a *App) error {
				if !a.Service.SaveInsights(ctx, &ds) {
					return fmt.Errorf("failed to save dataset")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", a.Service.SnapshotKeyFor(&ds))
				return nil
			})
		},
	}
}

func newDatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List dates that have a stored snapshot, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				entries, err := a.Service.AvailableDates(ctx)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Date, e.Display)
				}
				return nil
			})
		},
	}
}

func newImportCommand() *cobra.Command {
	var (
		date     string
		feedPath string
		section  string
		limit    int
		manifest string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace section items in a date's snapshot with entries from local feed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var specs []rss.ImportSpec
			switch {
			case manifest != "":
				m, err := rss.LoadManifest(manifest)
				if err != nil {
					return err
				}
				base := filepath.Dir(manifest)
				for _, spec := range m.Imports {
					if !filepath.IsAbs(spec.File) {
						spec.File = filepath.Join(base, spec.File)
					}
					specs = append(specs, spec)
				}
			case feedPath != "" && section != "":
				specs = append(specs, rss.ImportSpec{Section: model.SectionKey(section), File: feedPath, Limit: limit})
			default:
				return fmt.Errorf("either --manifest or both --feed and --section are required")
			}

			return withApp(cmd, func(ctx context.Context, a *App) error {
				for _, spec := range specs {
					if !spec.Section.Known() {
						logger.Warn("importing into an unknown section", "section", spec.Section)
					}
					feed, err := rss.ParseFile(spec.File)
					if err != nil {
						return err
					}
					items := rss.ToItems(feed, spec.Limit)
					saved, err := a.Service.ImportSection(ctx, date, spec.Section, items)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d items into %s for %s\n", len(items), spec.Section, saved)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "snapshot date (default today)")
	cmd.Flags().StringVar(&feedPath, "feed", "", "local RSS/Atom file")
	cmd.Flags().StringVar(&section, "section", "", "section key to replace, e.g. ai_research")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum items taken from the feed (0 = all)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest listing section/file pairs")
	return cmd
}
