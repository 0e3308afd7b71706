package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/namefang/internal/config"
	"github.com/Sumatoshi-tech/namefang/pkg/stats"
)

// StatsCommand holds flags for the stats command.
type StatsCommand struct {
	cfgPath   string
	statsPath string

	plotPath    string
	archivePath string
	fromArchive string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	sc := &StatsCommand{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show transformation statistics",
		Long: `Show the log of recorded reviews as a table, render it as an HTML
plot, or archive it into a compressed file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          sc.run,
	}

	cmd.Flags().StringVarP(&sc.cfgPath, "config", "c", "", "Config file path")
	cmd.Flags().StringVar(&sc.statsPath, "stats-file", "", "Statistics log path (overrides config)")
	cmd.Flags().StringVar(&sc.plotPath, "plot", "", "Write an HTML plot to this file")
	cmd.Flags().StringVar(&sc.archivePath, "archive", "", "Compress the log into this file and truncate it")
	cmd.Flags().StringVar(&sc.fromArchive, "from-archive", "", "Read records from a compressed archive instead of the live log")

	return cmd
}

func (sc *StatsCommand) run(cmd *cobra.Command, _ []string) error {
	path := sc.statsPath
	if path == "" {
		cfg, err := config.LoadConfig(sc.cfgPath)
		if err != nil {
			return err
		}

		path = cfg.Stats.Path
	}

	store := stats.NewStore(path)

	if sc.archivePath != "" {
		err := store.Archive(sc.archivePath)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Archived statistics to %s.\n", sc.archivePath)

		return nil
	}

	records, err := sc.loadRecords(store)
	if err != nil {
		return err
	}

	if sc.plotPath != "" {
		return sc.writePlot(cmd, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded reviews.")

		return nil
	}

	stats.RenderTable(cmd.OutOrStdout(), records)

	return nil
}

func (sc *StatsCommand) loadRecords(store *stats.Store) ([]stats.TransformationRecord, error) {
	if sc.fromArchive != "" {
		return stats.LoadArchive(sc.fromArchive)
	}

	return store.Load()
}

func (sc *StatsCommand) writePlot(cmd *cobra.Command, records []stats.TransformationRecord) error {
	f, err := os.Create(sc.plotPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", sc.plotPath, err)
	}

	err = stats.RenderPlot(f, records)
	if err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote plot to %s.\n", sc.plotPath)

	return nil
}
