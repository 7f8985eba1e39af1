package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewFreezeCmd freezes the results of one round or period.
func NewFreezeCmd(configPath *string) *cobra.Command {
	var roundID, periodID int64
	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Freeze the results of a closed round or period",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (roundID == 0) == (periodID == 0) {
				return errors.New("exactly one of --round or --period is required")
			}
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			b, err := buildBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			if roundID != 0 {
				if err := b.service.FreezeRound(cmd.Context(), roundID); err != nil {
					return fmt.Errorf("freeze round %d: %w", roundID, err)
				}
				return nil
			}
			if err := b.service.FreezePeriod(cmd.Context(), periodID); err != nil {
				return fmt.Errorf("freeze period %d: %w", periodID, err)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.Flags().Int64Var(&periodID, "period", 0, "period id")
	return cmd
}
