package main

import (
	"fmt"
	"strconv"
	"strings"

	"kunai/internal/app"
	"kunai/internal/memory"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdWrite)
}

var cmdWrite = &cobra.Command{
	Use:   "write <pid> <address> <value>",
	Short: "Overwrite memory of a process with a text value",
	Long:  "Writes the bytes of value at the hexadecimal address. The range must lie inside one mapped region.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[1])
		if err != nil {
			return err
		}

		ctrl, err := controller()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		res, err := ctrl.Write(app.WriteParams{PID: args[0], Addr: addr, Data: []byte(args[2])})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d byte(s) at %#x in %s (was %s)\n",
			len(args[2]), addr, res.Region, memory.Display(res.Old))
		return nil
	},
}

func parseAddr(s string) (uint64, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	addr, err := strconv.ParseUint(clean, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: want hexadecimal", s)
	}
	return addr, nil
}
