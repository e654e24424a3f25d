// Package command defines the polygate CLI.
package command

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Build information, set by the compiler via -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "polygate",
	Short: "Polygate - multi-protocol LLM gateway",
	Long: `Polygate exposes OpenAI Chat Completions, OpenAI Responses, Anthropic
Messages, Gemini generateContent and Ollama endpoints over a shared pool of
upstream provider accounts, translating between the protocols as needed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// wordSepNormalizeFunc lets --provider_pools work as --provider-pools.
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("polygate %s (%s)\n", version, gitCommit)
		},
	})
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
