package main

import (
	"fmt"

	"kunai/internal/tui"

	"github.com/spf13/cobra"
)

var tuiPID string

func init() {
	rootCmd.AddCommand(cmdTUI)
	cmdTUI.Flags().StringVarP(&tuiPID, "pid", "p", "", "Open this pid directly, skipping task selection")
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive memory editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := controller()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := runTUI(ctrl, tuiPID); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}

var runTUI = func(ctrl controllerAPI, pid string) error {
	return tui.Run(ctrl, pid)
}
