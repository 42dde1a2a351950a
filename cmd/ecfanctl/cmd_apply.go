package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ecfanapiv1alpha1 "github.com/uptime-induestries/ecfan-agent/api/ecfanapi/v1alpha1"
	"github.com/uptime-induestries/ecfan-agent/internal/agent"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
)

var hysteresis int

func init() {
	cmdApply.Flags().IntVar(&hysteresis, "hysteresis", -1, "derive the lower temperature thresholds from the upper ones with this margin (disabled when negative)")
	cmdApply.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json or yaml)")
	rootCmd.AddCommand(cmdApply)
}

var cmdApply = &cobra.Command{
	Use:     "apply <profile>",
	Example: "ecfanctl apply quiet.yaml --hysteresis 3",
	Short:   "Write a fan profile (yaml, json or toml) to the EC and verify it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := clientFromContext(ctx)

		cfg, err := loadProfile(args[0])
		if err != nil {
			return err
		}
		if hysteresis > 255 {
			return fmt.Errorf("hysteresis must be at most 255")
		}
		if hysteresis >= 0 {
			cfg.ApplyHysteresis(uint8(hysteresis))
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		req, err := ecfanapiv1alpha1.ToStruct(cfg)
		if err != nil {
			return err
		}
		resp, err := client.WriteConfig(ctx, req)
		if err != nil {
			return err
		}
		var res agent.ApplyResult
		if err := ecfanapiv1alpha1.FromStruct(resp, &res); err != nil {
			return err
		}

		err = printOutput(cmd.OutOrStdout(), outputFormat, res, func(w io.Writer) error {
			return printApplyResult(w, res)
		})
		if err != nil {
			return err
		}
		if !res.Verified {
			return fmt.Errorf("profile did not read back as written")
		}
		return nil
	},
}

// loadProfile reads a fan profile file; the format follows the file extension
func loadProfile(path string) (fancurve.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fancurve.Config{}, fmt.Errorf("failed to read profile: %w", err)
	}
	cfg, err := fancurve.DecodeConfig(v.AllSettings())
	if err != nil {
		return fancurve.Config{}, fmt.Errorf("failed to decode profile %s: %w", path, err)
	}
	return cfg, nil
}

func printApplyResult(w io.Writer, res agent.ApplyResult) error {
	if res.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", res.Warning)
	}
	for _, m := range res.Mismatches {
		fmt.Fprintf(w, "mismatch: %s\n", m)
	}
	if res.Verified {
		fmt.Fprintln(w, "profile applied and verified")
	}
	return nil
}
