// Command importer loads a ticket export from disk into the record store.
package main

import (
	"fmt"
	"os"

	"kayako-stat-service/internal/infrastructure/config"
	"kayako-stat-service/internal/infrastructure/persistence"
	"kayako-stat-service/internal/interface/repository"
	"kayako-stat-service/internal/interface/spreadsheet"
	"kayako-stat-service/internal/usecase"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	skipInvalid bool
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "importer FILE",
	Short: "Import a Kayako ticket export (.xlsx or .csv) into MongoDB",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip rows that fail to parse instead of aborting")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "normalize the file and print a summary without writing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	path := args[0]
	policy := usecase.PolicyAbort
	if skipInvalid {
		policy = usecase.PolicySkip
	}
	importer := usecase.NewTicketImporter(policy, log)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if dryRun {
		rows, err := spreadsheet.ReadRows(path, f)
		if err != nil {
			return err
		}
		result, err := importer.Import(rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rows read: %d\nrecords: %d\ndropped (unanswered): %d\ndropped (unresolved): %d\nskipped: %d\n",
			result.RowsRead, len(result.Records), result.DroppedUnanswered, result.DroppedUnresolved, len(result.Skipped))
		return nil
	}

	ctx := cmd.Context()
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer mongoClient.Disconnect(ctx)

	ticketRepo := repository.NewMongoTicketRepository(persistence.GetDatabase(mongoClient, cfg.MongoDB), cfg.MongoCollection)
	if err := ticketRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to create record indexes", "error", err)
	}

	historyDB, err := persistence.NewHistoryDB(cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		return err
	}
	defer persistence.CloseHistoryDB(historyDB)
	if err := repository.AutoMigrate(historyDB); err != nil {
		return fmt.Errorf("history migrate: %w", err)
	}

	svc := usecase.NewImportService(
		importer,
		usecase.NewTicketSync(ticketRepo, log),
		repository.NewGormImportRunRepository(historyDB),
		metrics.NewMetrics("kayako_stat", prometheus.NewRegistry()),
		log,
	)

	run, err := svc.ImportFile(ctx, path, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "import #%d: %d records synced (%d rows read, %d unanswered, %d unresolved, %d skipped)\n",
		run.ID, run.RecordsSynced, run.RowsRead, run.DroppedUnanswered, run.DroppedUnresolved, run.RowsSkipped)
	return nil
}
