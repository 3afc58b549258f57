// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/config"
	"github.com/eventops/fienta-codectl/internal/observability"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "fienta-codectl",
	Short:   "Manage Fienta discount codes through a real browser session.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Runs before every command, setting up config and logging.
		if err := config.Init(viper.GetViper(), cfgFile); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := viper.Unmarshal(&appCfg); err != nil {
			// Fall back to a usable logger so the failure is at least visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "fienta-codectl"})
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}

		observability.InitializeLogger(appCfg.Logger)
		observability.GetLogger().Debug("Starting fienta-codectl", zap.String("version", Version))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The command context is cancelled on SIGINT/SIGTERM so a half-finished batch
// stops between items instead of mid-mutation.
func Execute() {
	defer observability.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("event", "", "Fienta event id the discount listing belongs to")
	rootCmd.PersistentFlags().Bool("manual-login", false, "wait for a human to complete the login form instead of submitting credentials")
	rootCmd.PersistentFlags().Bool("headless", true, "run Chrome without a visible window")

	// Persistent flags override the file/env values of the same keys.
	_ = viper.BindPFlag("fienta.event_id", rootCmd.PersistentFlags().Lookup("event"))
	_ = viper.BindPFlag("fienta.manual_login", rootCmd.PersistentFlags().Lookup("manual-login"))
	_ = viper.BindPFlag("browser.headless", rootCmd.PersistentFlags().Lookup("headless"))

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
}
