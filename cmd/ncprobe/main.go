package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/coriolabs/ncprobe"
	"github.com/coriolabs/ncprobe/internal/cliconfig"
	"github.com/coriolabs/ncprobe/internal/watch"
)

const helpDescription = `
Report the record count and dimension listing of a netCDF dataset.

ncprobe prints the current size of the conventionally named unlimited
dimension (default "N_REC") and every dimension with its length, in the
order the file defines them. Classic files (CDF-1, CDF-2 and CDF-5) are
parsed natively; netCDF-4/HDF5 files are read through a pure-Go HDF5
backend. Configure via file ($HOME/.ncprobe/config.toml), environment
(NCPROBE_*) or flags; flags win.
`

var exampleUsage = strings.TrimSpace(`
  ncprobe argo_2019_01/nodc_D1900975_339.nc
  ncprobe --record-dim N_PROF --output json profile.nc
  ncprobe --watch --debounce 1s live_feed.nc
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "ncprobe <dataset>",
		Short:   "Report the record count and dimensions of a netCDF dataset",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Args:    cobra.ExactArgs(1),
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Load config file first (default $HOME/.ncprobe/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (NCPROBE_*)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			cfg.Path = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			run := func() error {
				start := time.Now()
				report, err := ncprobe.Inspect(cfg.Path, ncprobe.WithRecordDim(cfg.RecordDim))
				if err != nil {
					return err
				}
				log.Debug().
					Str("format", report.Format).
					Int("dimensions", len(report.Dimensions)).
					Dur("elapsed", time.Since(start)).
					Msg("dataset inspected")
				if cfg.Output == cliconfig.OutputJSON {
					return report.WriteJSON(os.Stdout)
				}
				return report.WriteText(os.Stdout)
			}

			if err := run(); err != nil {
				return err
			}
			if !cfg.Watch {
				return nil
			}

			// Watch mode: re-inspect whenever the dataset changes until
			// interrupted.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			w := watch.New(cfg.Path, watch.Config{Debounce: cfg.Debounce}, log, func() {
				if err := run(); err != nil {
					log.Error().Err(err).Msg("re-inspect failed")
				}
			})
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			log.Info().Str("path", cfg.Path).Msg("watching for changes")

			<-sigCh
			log.Info().Msg("received signal, stopping...")
			w.Stop()
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.ncprobe/config.toml)")
	root.Flags().StringVar(&cfg.RecordDim, "record-dim", cfg.RecordDim, "name of the unlimited (record) dimension")
	root.Flags().StringVar(&cfg.Output, "output", cfg.Output, "output format: text or json")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "keep running and re-inspect when the dataset changes")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "delay after a change before re-inspecting (watch mode)")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("ncprobe")
		os.Exit(1)
	}
}
