package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	ecfanapiv1alpha1 "github.com/uptime-induestries/ecfan-agent/api/ecfanapi/v1alpha1"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"google.golang.org/protobuf/types/known/emptypb"
	"gopkg.in/yaml.v3"
)

var outputFormat string

func init() {
	cmdStatus.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json or yaml)")
	rootCmd.AddCommand(cmdStatus)
	rootCmd.AddCommand(cmdWait)
}

var (
	cmdStatus = &cobra.Command{
		Use:     "status",
		Example: "ecfanctl status -o yaml",
		Short:   "Show fan speeds and the fan curves programmed into the EC",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := clientFromContext(ctx)

			resp, err := client.GetStatus(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			var st fancurve.Status
			if err := ecfanapiv1alpha1.FromStruct(resp, &st); err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), outputFormat, st, func(w io.Writer) error {
				return printStatus(w, st)
			})
		},
	}

	cmdWait = &cobra.Command{
		Use:   "wait-ready",
		Short: "Block until the agent has initialized the EC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, err := clientFromContext(ctx).WaitForReady(ctx, &emptypb.Empty{})
			return err
		},
	}
)

// printOutput renders v as json or yaml, or calls text for the human readable format
func printOutput(w io.Writer, format string, v interface{}, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func joinTable(t fancurve.Table) string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = fmt.Sprintf("%3d", v)
	}
	return strings.Join(parts, " ")
}

func printStatus(out io.Writer, st fancurve.Status) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "EC chip:\t0x%04X rev %d\n", st.ChipID(), st.ChipVersion)
	fmt.Fprintf(w, "Firmware:\t0x%02X\n", st.FirmwareVersion)
	fmt.Fprintf(w, "Fan 1:\t%d RPM (%d%%)\ttarget duty %d\tcurve value %d\n", st.Fan1RPM, st.Fan1Percent, st.Fan1TargetDuty, st.Fan1TargetCurveValue)
	fmt.Fprintf(w, "Fan 2:\t%d RPM (%d%%)\ttarget duty %d\tcurve value %d\n", st.Fan2RPM, st.Fan2Percent, st.Fan2TargetDuty, st.Fan2TargetCurveValue)
	fmt.Fprintf(w, "Breakpoint:\t%d\tacc %d/%d\tdec %d/%d\n", st.CurrentPoint, st.Fan1CurrentAcc, st.Fan2CurrentAcc, st.Fan1CurrentDec, st.Fan2CurrentDec)
	fmt.Fprintln(w)
	for _, nt := range st.Tables() {
		fmt.Fprintf(w, "%s\t%s\n", nt.Name, joinTable(nt.Table))
	}
	return w.Flush()
}
