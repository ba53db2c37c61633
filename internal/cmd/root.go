package cmd

import (
	"flag"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/config"
)

var (
	cfgFile string
	envFile string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config

	klogFlags = flag.NewFlagSet("klog", flag.ExitOnError)
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"source":     "source",
	"kubeconfig": "kube.config",
	"context":    "kube.context",
	"remote":     "remote.url",
	"cache-ttl":  "cache.ttl",
	"addr":       "server.addr",
	"interval":   "poll.interval",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gpudash",
	Short: "gpudash - GPU, CPU and memory occupancy of Kubernetes clusters",
	Long: `gpudash reads nodes and pods from one or more Kubernetes clusters and
reports how much of their GPU, CPU and memory capacity is requested, per
node, per GPU model, per label and per workload owner.

Sources:
  - k8s:    in-cluster config, or every context of the kubeconfig
  - mock:   three fixed demo clusters
  - remote: another gpudash server

Example:
  gpudash serve --addr :8000
  gpudash tui --context prod-us-east-1
  gpudash summary --source mock --cluster __all__`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	pf.String("source", config.SourceK8s, "telemetry source: k8s, mock or remote")
	pf.String("kubeconfig", "", "path to kubeconfig file (default $KUBECONFIG or ~/.kube/config)")
	pf.String("context", "", "kube context used as the default cluster")
	pf.String("remote", "", "base URL of the gpudash server read by --source remote")
	pf.Duration("cache-ttl", 0, "cache repository reads for this long, 0 disables (default 5s)")

	klog.InitFlags(klogFlags)
	pf.AddGoFlagSet(klogFlags)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	v := config.New()
	if err := bindFlags(v.BindPFlag, cmd.Flags()); err != nil {
		return err
	}
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	klog.V(1).InfoS("Loaded config", "source", cfg.Source, "file", cfgFile)
	return nil
}

func bindFlags(bind func(string, *pflag.Flag) error, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := bind(key, f); err != nil {
			return err
		}
	}
	return nil
}
