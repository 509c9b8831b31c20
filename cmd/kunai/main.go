package main

import (
	"log"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kunai [command]",
	Short: "kunai: inspect and edit the memory of a running process",
	Long: `kunai lists the mapped regions of a live process, scans them for a text
pattern and overwrites the bytes at a chosen match. Run "kunai tui" for the
interactive editor or use the one-shot commands for scripting.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON or YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
