package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/darkit/hostprobe"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HOSTPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "hostprobe",
		Short:        "Probe virtualization, optional features and the hardware fingerprint of this machine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(v.GetString("log-level"))
		},
	}
	root.SetOut(out)
	root.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newVirtCmd(out),
		newFeatureCmd(out, v),
		newFingerprintCmd(out, v),
		newProtectCmd(out, v),
	)
	return root
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

func newVirtCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "virt",
		Short: "Report CPU virtualization support and OS/firmware enablement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(out, hostprobe.Virtualization())
		},
	}
}

func newFeatureCmd(out io.Writer, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature NAME",
		Short: "Probe whether an optional feature is enabled (" + strings.Join(hostprobe.Features(), ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := hostprobe.LookupFeature(args[0])
			if !ok {
				return fmt.Errorf("unknown feature %q, known: %s", args[0], strings.Join(hostprobe.Features(), ", "))
			}
			order, err := hostprobe.ParseMethodOrder(v.GetString("order"))
			if err != nil {
				return err
			}
			return printJSON(out, hostprobe.ProbeFeature(f, order...))
		},
	}
	cmd.Flags().String("order", "", "comma separated method order (service, optional_feature, registry)")
	_ = v.BindPFlag("order", cmd.Flags().Lookup("order"))
	return cmd
}

func newFingerprintCmd(out io.Writer, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Compute the hardware fingerprint and list its factors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("categories", cmd.Flags().Lookup("categories")); err != nil {
				return err
			}
			cats, err := hostprobe.ParseCategories(v.GetString("categories"))
			if err != nil {
				return err
			}
			fp, err := hostprobe.ComputeFingerprint(cats...)
			if err != nil {
				return err
			}
			return printJSON(out, fp)
		},
	}
	cmd.Flags().String("categories", "", "comma separated categories (board, processor, disk, gpu); empty means all")
	return cmd
}

func newProtectCmd(out io.Writer, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Derive an application specific device binding id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// categories 与 fingerprint 子命令共用同一个配置键，只绑定当前执行的命令
			if err := v.BindPFlag("categories", cmd.Flags().Lookup("categories")); err != nil {
				return err
			}
			appID := v.GetString("app")
			if appID == "" {
				return fmt.Errorf("--app is required")
			}
			cats, err := hostprobe.ParseCategories(v.GetString("categories"))
			if err != nil {
				return err
			}
			id, err := hostprobe.ProtectedID(appID, cats...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, id)
			return err
		},
	}
	cmd.Flags().String("app", "", "application id")
	cmd.Flags().String("categories", "", "comma separated categories; empty means all")
	_ = v.BindPFlag("app", cmd.Flags().Lookup("app"))
	return cmd
}
