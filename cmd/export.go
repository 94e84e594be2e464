package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/vehicle-permit/internal/export"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	permitPostgres "github.com/frahmantamala/vehicle-permit/internal/permit/postgres"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

var (
	exportStart  string
	exportEnd    string
	exportFormat string
	exportFilter string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export permit requests for a departure range",
	Long:  `Write permit requests departing within a date range to a CSV or XLSX file under the export directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		query := permit.NewQueryService(permitPostgres.NewPermitRepository(gdb), permitPostgres.NewReportRepository(db))
		service := export.NewService(query, afero.NewOsFs(), cfg.Export, logger.L())

		req := export.RequestDTO{FilterType: exportFilter, Start: exportStart, End: exportEnd, Format: exportFormat}
		start, end, appErr := req.Range(service.Now())
		if appErr != nil {
			log.Fatalf("invalid range: %s", appErr.GetDetailedMessage())
		}

		result, err := service.ExportRange(context.Background(), start, end, exportFormat)
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("failed to print result: %v", err)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStart, "start", "", "First departure date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Last departure date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv or xlsx (defaults to export.default_format)")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "today, this_week, this_month or custom")
}
