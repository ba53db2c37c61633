package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/help"
	"github.com/Wonki4/k8s-report-dashboard/internal/app"
	"github.com/Wonki4/k8s-report-dashboard/internal/poller"
)

var (
	logFile    string
	tuiCluster string
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	Long: `Open the full-screen terminal dashboard. Logs go to --log-file while it
is running.

Examples:
  gpudash tui
  gpudash tui --cluster __all__ --interval 30s`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Duration("interval", 0, "poll interval (default 15s)")
	tuiCmd.Flags().StringVar(&logFile, "log-file", help.DefaultLogFile(), "log file")
	tuiCmd.Flags().StringVar(&tuiCluster, "cluster", "", "cluster shown first, __all__ for every cluster")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	for name, value := range map[string]string{
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"stderrthreshold": "FATAL",
		"log_file":        logFile,
	} {
		if err := klogFlags.Set(name, value); err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
	}
	defer klog.Flush()

	repo, err := newRepo(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	p := poller.New(repo, cfg.Poll.Interval)
	defer p.Stop()

	klog.InfoS("Starting terminal dashboard", "source", cfg.Source, "interval", cfg.Poll.Interval)
	_, err = tea.NewProgram(app.New(repo, p, tuiCluster), tea.WithAltScreen()).Run()
	return err
}
