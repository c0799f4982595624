// Command scriptanalyzer is the CLI front end over package analyzer: an
// "analyze" subcommand that reports every spending path through a script,
// and a "disasm" subcommand that just renders its disassembly.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wangxinyu2018/scriptanalyzer/config"
	"github.com/wangxinyu2018/scriptanalyzer/logging"
)

var log = logging.New("cmd")

var (
	cfgFile       string
	asmInput      bool
	scriptVersion string
	scriptRules   string
	workerThreads int
	maxPaths      int
	verbose       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scriptanalyzer",
		Short: "Static analyzer for Bitcoin Script",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (script_version, script_rules, worker_threads, max_paths)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&scriptVersion, "script-version", "", "legacy, segwitv0, or segwitv1 (default: legacy)")
	root.PersistentFlags().StringVar(&scriptRules, "script-rules", "", "consensus or all (default: consensus)")
	root.PersistentFlags().IntVar(&workerThreads, "worker-threads", -1, "path-exploration goroutine count (default: 0, sequential)")
	root.PersistentFlags().IntVar(&maxPaths, "max-paths", -1, "maximum number of spending paths to explore")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newDisasmCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <script>",
		Short: "Enumerate spending paths and report stack/locktime requirements",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	cmd.Flags().BoolVar(&asmInput, "asm", false, "parse <script> as ASM text instead of hex bytecode")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <script>",
		Short: "Render a script's disassembly",
		Args:  cobra.ExactArgs(1),
		RunE:  runDisasm,
	}
	cmd.Flags().BoolVar(&asmInput, "asm", false, "parse <script> as ASM text instead of hex bytecode")
	return cmd
}

func loadParams() (config.Params, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return config.Params{}, err
		}
	}
	if scriptVersion != "" {
		v.Set("script_version", scriptVersion)
	}
	if scriptRules != "" {
		v.Set("script_rules", scriptRules)
	}
	if workerThreads >= 0 {
		v.Set("worker_threads", workerThreads)
	}
	if maxPaths >= 0 {
		v.Set("max_paths", maxPaths)
	}
	return config.LoadViper(v)
}
