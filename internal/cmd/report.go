package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
	"github.com/Wonki4/k8s-report-dashboard/internal/poller"
)

var summaryCluster string

// clustersCmd represents the clusters command
var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List the clusters of the configured source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := newRepo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		clusters, err := repo.ListClusters(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list clusters: %w", err)
		}
		w := cmd.OutOrStdout()
		for _, c := range clusters {
			mark := " "
			if c.IsActive {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s\n", mark, c.Name)
		}
		return nil
	},
}

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the occupancy summary of a cluster",
	Long: `Print CPU, memory and GPU occupancy of one cluster, or of every cluster
with --cluster __all__.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := newRepo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		snap, err := poller.Fetch(cmd.Context(), repo, summaryCluster, nil)
		if err != nil {
			return fmt.Errorf("failed to get summary: %w", err)
		}
		printSummary(cmd.OutOrStdout(), snap.Summary)
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryCluster, "cluster", "", "cluster name, __all__ for every cluster (default: current)")
	rootCmd.AddCommand(clustersCmd, summaryCmd)
}

func printSummary(w io.Writer, s domain.ClusterSummary) {
	fmt.Fprintf(w, "Nodes: %d (%d ready)\n", s.NodeCount, s.ReadyNodeCount)
	cores := func(m int64) string { return engine.FormatCores(m) + " cores" }
	count := func(n int64) string { return strconv.FormatInt(n, 10) }
	for _, r := range []struct {
		name    string
		stat    domain.ResourceStat
		display func(int64) string
	}{{"CPU", s.CPU, cores}, {"MEM", s.Memory, engine.FormatBytesRaw}, {"GPU", s.GPU, count}} {
		fmt.Fprintf(w, "%-4s %s used of %s allocatable (%.1f%%)\n",
			r.name, r.stat.UsedDisplay, r.display(r.stat.Allocatable), r.stat.UtilizationPercent)
	}
	for _, t := range s.GPUByType {
		fmt.Fprintf(w, "  %-28s %d/%d (%.1f%%) on %d nodes\n", t.GPUType, t.Used, t.Allocatable, t.UtilizationPercent, t.NodeCount)
	}
}
