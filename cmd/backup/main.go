package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"accentclash/internal/config"
	"accentclash/internal/database"
	"accentclash/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	backupService := service.NewBackupService(db)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, backupService, cfg.DatabaseType, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, *importInput, *importClear)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, databaseType, outputPath string) {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("Error: failed to create output directory: %v\n", err)
			os.Exit(1)
		}
	}

	if err := backupService.Export(ctx, outputPath, databaseType); err != nil {
		fmt.Printf("Error: export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backup written to %s\n", outputPath)
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clear bool) {
	if _, err := os.Stat(inputPath); err != nil {
		fmt.Printf("Error: cannot read input file: %v\n", err)
		os.Exit(1)
	}

	if clear {
		fmt.Println("WARNING: -clear will delete all existing data before import.")
		fmt.Print("Type 'yes' to continue: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("Import cancelled")
			os.Exit(0)
		}
	}

	if err := backupService.Import(ctx, inputPath, clear); err != nil {
		fmt.Printf("Error: import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Import completed")
}

func printUsage() {
	fmt.Println("Usage: backup <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  export    Export all data to a JSON file")
	fmt.Println("  import    Import data from a JSON file")
	fmt.Println()
	fmt.Println("Run 'backup <command> -h' for command flags")
}
