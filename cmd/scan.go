// File: cmd/scan.go
package cmd

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/fienta"
	"github.com/eventops/fienta-codectl/internal/observability"
	"github.com/eventops/fienta-codectl/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	var (
		output     string
		withOrders bool
	)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the discount listing and report every code with its usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var codes []fienta.DiscountCode
			result, err := orchestrator.Run(ctx, &appCfg, func(ctx context.Context, env *orchestrator.Env) error {
				scanned, err := env.Scanner.Scan(ctx)
				if err != nil {
					return err
				}
				if withOrders {
					for i := range scanned {
						orders, err := env.Scraper.Enrich(ctx, scanned[i])
						if err != nil {
							env.Logger.Warn("Could not fetch orders for code.",
								zap.String("code", scanned[i].Code), zap.Error(err))
							continue
						}
						scanned[i].Orders = orders
					}
				}
				codes = scanned
				return nil
			})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(codes, "", "  ")
			if err != nil {
				return fmt.Errorf("encode scan output: %w", err)
			}
			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write scan output: %w", err)
				}
				logger.Info("Scan complete.",
					zap.Int("codes", len(codes)),
					zap.String("output", output),
					zap.String("run_id", result.RunID))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	scanCmd.Flags().StringVarP(&output, "output", "o", "", "write the scan result JSON to this file instead of stdout")
	scanCmd.Flags().BoolVar(&withOrders, "with-orders", false, "also fetch the orders behind every used code")
	return scanCmd
}
