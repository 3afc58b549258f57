// File: cmd/delete.go
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/observability"
	"github.com/eventops/fienta-codectl/internal/orchestrator"
)

// newDeleteCmd creates and configures the `delete` command.
func newDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete [codes...]",
		Short: "Delete discount codes from the console",
		Long: `Deletes each named code. A deletion only counts as done once the console
has returned to the listing and the code no longer appears on it; anything
less is reported as a failure in the audit log.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			result, err := orchestrator.Run(cmd.Context(), &appCfg, func(ctx context.Context, env *orchestrator.Env) error {
				return env.Engine.DeleteBatch(ctx, args, env.Audit)
			})
			if result != nil && result.AuditPath != "" {
				logger.Info("Delete run finished.",
					zap.Int("items", len(args)),
					zap.String("audit", result.AuditPath))
			}
			return err
		},
	}
	return deleteCmd
}
