package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/api"
	"github.com/TWRT/wmx-migrator/internal/archive"
	"github.com/TWRT/wmx-migrator/internal/client/wfm"
	"github.com/TWRT/wmx-migrator/internal/config"
	"github.com/TWRT/wmx-migrator/internal/logger"
	"github.com/TWRT/wmx-migrator/internal/repository"
	"github.com/TWRT/wmx-migrator/internal/service"
)

type cli struct {
	cfg config.Config
	log *zap.Logger
}

func setupFlags(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("source-url", "", "Workflow service base URL of the source instance.")
	cmd.PersistentFlags().String("source-portal-url", "", "Portal URL of the source instance, for token generation.")
	cmd.PersistentFlags().String("dest-url", "", "Workflow service base URL of the destination instance.")
	cmd.PersistentFlags().String("dest-portal-url", "", "Portal URL of the destination instance, for token generation.")
	cmd.PersistentFlags().String("db", "./wmx-migrator.db", "Path to the run ledger database.")
	cmd.PersistentFlags().Duration("http-timeout", 0, "Timeout for calls against the workflow service.")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
	return viper.BindPFlags(cmd.PersistentFlags())
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.New(viper.GetBool("debug"))
	return nil
}

func (c *cli) openLedger() (*repository.RunRepository, *repository.ItemResultRepository, func(), error) {
	db, err := repository.InitDB(c.cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { db.Close() }
	return repository.NewRunRepository(db), repository.NewItemResultRepository(db), closeDB, nil
}

func (c *cli) sourceClient(itemID string) (*wfm.Client, error) {
	token, err := c.cfg.Source.ResolveToken(c.cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	return wfm.NewClient(c.cfg.Source.URL, itemID, token, c.cfg.HTTPTimeout), nil
}

func (c *cli) destClient(itemID string) (*wfm.Client, error) {
	token, err := c.cfg.Dest.ResolveToken(c.cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	return wfm.NewClient(c.cfg.Dest.URL, itemID, token, c.cfg.HTTPTimeout), nil
}

func (c *cli) runExport(cmd *cobra.Command, args []string) error {
	sourceItemID, dir := args[0], args[1]

	source, err := c.sourceClient(sourceItemID)
	if err != nil {
		return err
	}
	arc, err := archive.Open(dir)
	if err != nil {
		return err
	}
	runRepo, itemRepo, closeDB, err := c.openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := service.NewExportService(source, arc, sourceItemID, runRepo, itemRepo, c.log)
	report, err := svc.Run()
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())
	if report.Failed() > 0 {
		return fmt.Errorf("export finished with %d failed items", report.Failed())
	}
	return nil
}

func (c *cli) runImport(cmd *cobra.Command, args []string) error {
	destItemID, dir := args[0], args[1]

	dest, err := c.destClient(destItemID)
	if err != nil {
		return err
	}
	arc, err := archive.Open(dir)
	if err != nil {
		return err
	}
	runRepo, itemRepo, closeDB, err := c.openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := service.NewImportService(dest, arc, destItemID, runRepo, itemRepo, c.log)
	svc.LegacyTableBranch = c.cfg.LegacyTableBranch
	report, err := svc.Run()
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())
	if report.Failed() > 0 {
		return fmt.Errorf("import finished with %d failed items", report.Failed())
	}
	return nil
}

func (c *cli) runMigrate(cmd *cobra.Command, args []string) error {
	sourceItemID, destItemID := args[0], args[1]

	source, err := c.sourceClient(sourceItemID)
	if err != nil {
		return err
	}
	dest, err := c.destClient(destItemID)
	if err != nil {
		return err
	}
	runRepo, itemRepo, closeDB, err := c.openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := service.NewMigrateService(source, dest, sourceItemID, destItemID, runRepo, itemRepo, c.log)
	report, err := svc.Run()
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())
	if report.Failed() > 0 {
		return fmt.Errorf("migration finished with %d failed items", report.Failed())
	}
	return nil
}

func (c *cli) runRuns(cmd *cobra.Command, args []string) error {
	runRepo, _, closeDB, err := c.openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := runRepo.GetRuns()
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%s  %-8s %-22s %s → %s  ok=%d skip=%d fail=%d  started %s\n",
			run.ID, run.Kind, run.Status,
			run.SourceItem, run.DestItem,
			run.SucceededItems, run.SkippedItems, run.FailedItems,
			humanize.Time(run.StartedAt))
	}
	return nil
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	db, err := repository.InitDB(c.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	addr := c.cfg.ServeAddr
	if addr == "" {
		addr = ":8080"
	}
	c.log.Info("serving run ledger", zap.String("addr", addr))
	return http.ListenAndServe(addr, api.SetupRouter(db))
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:               "wmx-migrator",
		Short:             "Migrate workflow configuration between Workflow Manager instances",
		PersistentPreRunE: c.setup,
	}

	exportCmd := &cobra.Command{
		Use:   "export <source-item-id> <directory>",
		Short: "Export diagrams, job templates, notifications and lookups to JSON files",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runExport,
	}

	importCmd := &cobra.Command{
		Use:   "import <dest-item-id> <directory>",
		Short: "Import an exported configuration directory into a destination instance",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runImport,
	}
	importCmd.Flags().Bool("legacy-table-branch", false,
		"Reproduce the legacy extended-property table branch selection (suspect).")
	if err := viper.BindPFlags(importCmd.Flags()); err != nil {
		log.Fatal(err)
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate <source-item-id> <dest-item-id>",
		Short: "Copy diagrams and job templates directly between two instances",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runMigrate,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List past export, import and migrate runs",
		Args:  cobra.NoArgs,
		RunE:  c.runRuns,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
	serveCmd.Flags().String("serve-addr", ":8080", "Listen address for the run ledger API.")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		log.Fatal(err)
	}

	if err := setupFlags(rootCmd); err != nil {
		log.Fatal(err)
	}
	rootCmd.AddCommand(exportCmd, importCmd, migrateCmd, runsCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
