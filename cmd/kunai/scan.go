package main

import (
	"fmt"
	"os"
	"time"

	"kunai/internal/app"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	scanWritableOnly bool
	scanQuiet        bool
)

func init() {
	rootCmd.AddCommand(cmdScan)
	cmdScan.Flags().BoolVarP(&scanWritableOnly, "writable", "w", false, "Only scan writable regions")
	cmdScan.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Do not show a progress spinner")
}

var cmdScan = &cobra.Command{
	Use:   "scan <pid> <pattern>",
	Short: "Scan the memory of a process for a text pattern",
	Long:  "Reads every mapped region of the process once and prints the address of each non-overlapping occurrence of the pattern.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := controller()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		var spin *spinner.Spinner
		if !scanQuiet {
			spin = spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
			spin.Suffix = fmt.Sprintf(" Scanning pid %s...", args[0])
			spin.Start()
		}
		rep, err := ctrl.Scan(app.ScanParams{PID: args[0], Pattern: args[1], WritableOnly: scanWritableOnly})
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range rep.Matches {
			fmt.Fprintf(out, "%#x %s %s\n", m.Start, m.Display, rep.Regions[m.Region])
		}
		fmt.Fprintf(out, "%d match(es)", len(rep.Matches))
		if n := len(rep.Failures); n > 0 {
			fmt.Fprintf(out, ", %d region(s) unreadable", n)
		}
		if rep.Dropped > 0 {
			fmt.Fprintf(out, ", %d occurrence(s) vanished", rep.Dropped)
		}
		fmt.Fprintln(out)
		return nil
	},
}
