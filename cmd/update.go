// File: cmd/update.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/fienta"
	"github.com/eventops/fienta-codectl/internal/observability"
	"github.com/eventops/fienta-codectl/internal/orchestrator"
)

// newUpdateCmd creates and configures the `update` command.
func newUpdateCmd() *cobra.Command {
	var (
		amount      float64
		unit        string
		description string
	)

	updateCmd := &cobra.Command{
		Use:   "update [codes...]",
		Short: "Update the magnitude and description of existing codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			base := fienta.UpdateSpec{
				Amount:         amount,
				Description:    description,
				SetDescription: cmd.Flags().Changed("description"),
			}
			switch unit {
			case "percent", "%":
				base.Unit = fienta.UnitPercent
			case "absolute", "eur":
				base.Unit = fienta.UnitAbsolute
			default:
				return fmt.Errorf("unknown unit %q (want percent or absolute)", unit)
			}

			specs := make([]fienta.UpdateSpec, 0, len(args))
			for _, code := range args {
				spec := base
				spec.Code = code
				specs = append(specs, spec)
			}

			result, err := orchestrator.Run(cmd.Context(), &appCfg, func(ctx context.Context, env *orchestrator.Env) error {
				return env.Engine.UpdateBatch(ctx, specs, env.Audit)
			})
			if result != nil && result.AuditPath != "" {
				logger.Info("Update run finished.",
					zap.Int("items", len(specs)),
					zap.String("audit", result.AuditPath))
			}
			return err
		},
	}

	updateCmd.Flags().Float64Var(&amount, "amount", 10, "new discount magnitude")
	updateCmd.Flags().StringVar(&unit, "unit", "percent", "discount unit: percent or absolute")
	updateCmd.Flags().StringVar(&description, "description", "", "new internal note (pass an empty string to clear it)")
	return updateCmd
}
