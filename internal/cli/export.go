package cli

import (
	"errors"
	"fmt"
	"os"

	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/export"

	"github.com/spf13/cobra"
)

// NewExportCmd writes round or period results to an xlsx file.
func NewExportCmd(configPath *string) *cobra.Command {
	var (
		roundID, periodID int64
		out               string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export round or period results as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (roundID == 0) == (periodID == 0) {
				return errors.New("exactly one of --round or --period is required")
			}
			key := domain.PeriodKey(periodID)
			if roundID != 0 {
				key = domain.RoundKey(roundID)
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

			rows, err := b.service.Results(cmd.Context(), key)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s-%d.xlsx", key.Kind, key.ID)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteXLSX(f, rows); err != nil {
				f.Close()
				return err
			}
			logger.Info("results exported", "key", key.String(), "rows", len(rows), "file", out)
			return f.Close()
		},
	}
	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.Flags().Int64Var(&periodID, "period", 0, "period id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>-<id>.xlsx)")
	return cmd
}
