package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mapsWritableOnly bool

func init() {
	rootCmd.AddCommand(cmdMaps)
	cmdMaps.Flags().BoolVarP(&mapsWritableOnly, "writable", "w", false, "Only show writable regions")
}

var cmdMaps = &cobra.Command{
	Use:   "maps <pid>",
	Short: "Print the mapped memory regions of a process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := controller()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		regions, err := ctrl.Maps(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range regions {
			if mapsWritableOnly && !r.Writable() {
				continue
			}
			name := r.Name
			if r.Anonymous() {
				name = "[anon]"
			}
			fmt.Fprintf(out, "%x-%x %s %10d %s\n", r.Start, r.End, r.Perms, r.Size(), name)
		}
		return nil
	},
}
