package main

import (
	"fmt"

	"kunai/internal/app"

	"github.com/spf13/cobra"
)

var (
	tasksName string
	tasksPID  string
)

func init() {
	rootCmd.AddCommand(cmdTasks)
	cmdTasks.Flags().StringVar(&tasksName, "name", "", "Only show tasks whose name contains this text")
	cmdTasks.Flags().StringVar(&tasksPID, "pid", "", "Only show tasks whose pid contains this text")
}

var cmdTasks = &cobra.Command{
	Use:   "tasks",
	Short: "List running tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := controller()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		tasks, err := ctrl.ListTasks(app.TaskParams{Name: tasksName, PID: tasksPID})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No matching tasks")
			return nil
		}
		for _, t := range tasks {
			fmt.Fprintf(out, "%-8s %-20s %-14s %s\n", t.PID, t.Name, t.State, t.Cmdline)
		}
		return nil
	},
}
