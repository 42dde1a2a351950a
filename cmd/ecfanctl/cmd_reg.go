package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func init() {
	cmdReg.AddCommand(cmdRegRead)
	rootCmd.AddCommand(cmdReg)
	rootCmd.AddCommand(cmdRegisters)
}

var (
	cmdReg = &cobra.Command{
		Use:   "reg",
		Short: "Raw EC register access",
	}

	cmdRegRead = &cobra.Command{
		Use:     "read <name|address>...",
		Example: "ecfanctl reg read FW_VER 0xC534",
		Short:   "Read EC registers by name or address",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := clientFromContext(ctx)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, arg := range args {
				addr, err := ec.ParseAddress(arg)
				if err != nil {
					return err
				}
				val, err := client.ReadRegister(ctx, wrapperspb.UInt32(uint32(addr)))
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				fmt.Fprintf(w, "%s\t%s\t0x%02X\t%d\n", arg, addr, val.GetValue(), val.GetValue())
			}
			return w.Flush()
		},
	}

	cmdRegisters = &cobra.Command{
		Use:   "registers",
		Short: "List the known EC registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range ec.RegisterNames() {
				addr, _ := ec.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\n", name, addr)
			}
			return w.Flush()
		},
	}
)
