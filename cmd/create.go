// File: cmd/create.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/fienta"
	"github.com/eventops/fienta-codectl/internal/observability"
	"github.com/eventops/fienta-codectl/internal/orchestrator"
	"github.com/eventops/fienta-codectl/internal/records"
)

// newCreateCmd creates and configures the `create` command.
func newCreateCmd() *cobra.Command {
	var (
		input       string
		amount      float64
		unit        string
		orderLimit  int
		ticketLimit int
		description string
	)

	createCmd := &cobra.Command{
		Use:   "create [codes...]",
		Short: "Create discount codes through the console's new-discount form",
		Long: `Creates one discount per code argument, or per row of --input, using the
shared amount/unit/limit flags as defaults. Every item's outcome lands in the
run's audit log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			defaults := fienta.CreateSpec{
				Amount:      amount,
				OrderLimit:  orderLimit,
				TicketLimit: ticketLimit,
				Description: description,
			}
			switch unit {
			case "percent", "%":
				defaults.Unit = fienta.UnitPercent
			case "absolute", "eur":
				defaults.Unit = fienta.UnitAbsolute
			default:
				return fmt.Errorf("unknown unit %q (want percent or absolute)", unit)
			}

			var specs []fienta.CreateSpec
			if input != "" {
				parsed, err := records.ReadCreateSpecs(input, defaults)
				if err != nil {
					return err
				}
				specs = parsed
			}
			for _, code := range args {
				spec := defaults
				spec.Code = code
				specs = append(specs, spec)
			}
			if len(specs) == 0 {
				return fmt.Errorf("nothing to create: pass codes as arguments or --input")
			}

			result, err := orchestrator.Run(cmd.Context(), &appCfg, func(ctx context.Context, env *orchestrator.Env) error {
				return env.Engine.CreateBatch(ctx, specs, env.Audit)
			})
			if result != nil && result.AuditPath != "" {
				logger.Info("Create run finished.",
					zap.Int("items", len(specs)),
					zap.String("audit", result.AuditPath))
			}
			return err
		},
	}

	createCmd.Flags().StringVarP(&input, "input", "i", "", "CSV of codes to create (header: code[,amount,unit,order_limit,ticket_limit,description])")
	createCmd.Flags().Float64Var(&amount, "amount", 10, "discount magnitude")
	createCmd.Flags().StringVar(&unit, "unit", "percent", "discount unit: percent or absolute")
	createCmd.Flags().IntVar(&orderLimit, "order-limit", 0, "maximum orders per code (0 = unlimited)")
	createCmd.Flags().IntVar(&ticketLimit, "ticket-limit", 0, "maximum tickets per code (0 = unlimited)")
	createCmd.Flags().StringVar(&description, "description", "", "internal note attached to each code")
	return createCmd
}
