// File: cmd/rename.go
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

// newRenameCmd creates and configures the `rename` command.
func newRenameCmd() *cobra.Command {
	var (
		input       string
		limitsOnly  bool
		orderLimit  int
		ticketLimit int
	)

	renameCmd := &cobra.Command{
		Use:   "rename [OLD NEW]",
		Short: "Rename discount codes, one pair or a whole CSV of them",
		Long: `Renames OLD to NEW, or every old,new row of --input. Pairs whose sides
differ only in case or whitespace are skipped without touching the console.
With --limits-only the code itself is left alone and only the order/ticket
caps are written.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			var pairs []fienta.RenamePair
			if input != "" {
				parsed, err := records.ReadRenamePairs(input)
				if err != nil {
					return err
				}
				pairs = parsed
			}
			if len(args) == 2 {
				pairs = append(pairs, fienta.RenamePair{Old: args[0], New: args[1]})
			} else if len(args) != 0 {
				return fmt.Errorf("pass exactly OLD and NEW, or use --input")
			}
			if len(pairs) == 0 {
				return fmt.Errorf("nothing to rename: pass OLD NEW or --input")
			}

			opts := fienta.RenameOptions{
				LimitsOnly:  limitsOnly,
				OrderLimit:  orderLimit,
				TicketLimit: ticketLimit,
				SetLimits:   cmd.Flags().Changed("order-limit") || cmd.Flags().Changed("ticket-limit"),
			}
			if limitsOnly && !opts.SetLimits {
				return fmt.Errorf("--limits-only needs --order-limit and/or --ticket-limit")
			}

			result, err := orchestrator.Run(cmd.Context(), &appCfg, func(ctx context.Context, env *orchestrator.Env) error {
				return env.Engine.RenameBatch(ctx, pairs, opts, env.Audit)
			})
			if result != nil && result.AuditPath != "" {
				logger.Info("Rename run finished.",
					zap.Int("pairs", len(pairs)),
					zap.String("audit", result.AuditPath))
			}
			return err
		},
	}

	renameCmd.Flags().StringVarP(&input, "input", "i", "", "CSV of old,new pairs")
	renameCmd.Flags().BoolVar(&limitsOnly, "limits-only", false, "leave the code untouched and only update the caps")
	renameCmd.Flags().IntVar(&orderLimit, "order-limit", 0, "new maximum orders per code")
	renameCmd.Flags().IntVar(&ticketLimit, "ticket-limit", 0, "new maximum tickets per code")
	return renameCmd
}
