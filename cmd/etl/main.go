package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"property-etl/internal/config"
	"property-etl/internal/etl"
	"property-etl/internal/scheduler"
)

var (
	configPath      string
	dataPath        string
	fieldConfigPath string
	dbType          string
	dbHost          string
	dbPort          int
	dbUser          string
	dbPassword      string
	dbName          string
	dryRun          bool
	prune           bool
)

func main() {
	root := &cobra.Command{
		Use:          "property-etl",
		Short:        "Normalize a raw property-listing dataset and load it into the relational store",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&dataPath, "data", "", "override path to the raw dataset")
	root.PersistentFlags().StringVar(&fieldConfigPath, "field-config", "", "override path to the field mapping file")
	root.PersistentFlags().StringVar(&dbType, "db-type", "", "database backend (mysql or postgres)")
	root.PersistentFlags().StringVar(&dbHost, "db-host", "", "override database host")
	root.PersistentFlags().IntVar(&dbPort, "db-port", 0, "override database port")
	root.PersistentFlags().StringVar(&dbUser, "db-user", "", "override database user")
	root.PersistentFlags().StringVar(&dbPassword, "db-password", "", "override database password")
	root.PersistentFlags().StringVar(&dbName, "db-name", "", "override database name")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the transform-and-load batch once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			summary, err := etl.Run(cfg, etl.Options{DryRun: dryRun, Prune: prune})
			if err != nil {
				return err
			}
			log.Printf("Run finished: %s", summary)
			return nil
		},
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "transform without loading into the database")
	runCmd.Flags().BoolVar(&prune, "prune", false, "after loading, delete stored properties missing from the dataset")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			store, err := etl.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.InitSchema(); err != nil {
				return err
			}
			log.Println("Migrate finished: schema is up to date")
			return nil
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the batch on the configured daily schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			cfg.ETL.DailyRunEnabled = true

			s := scheduler.New(cfg)
			if err := s.Start(); err != nil {
				return err
			}
			defer s.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			log.Println("Shutting down scheduler")
			return nil
		},
	}

	root.AddCommand(runCmd, migrateCmd, scheduleCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig layers flag overrides over the file/env configuration.
func buildConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if dataPath != "" {
		cfg.ETL.DataPath = dataPath
	}
	if fieldConfigPath != "" {
		cfg.ETL.FieldConfigPath = fieldConfigPath
	}
	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbHost != "" {
		cfg.Database.MySQL.Host = dbHost
		cfg.Database.Postgres.Host = dbHost
	}
	if dbPort != 0 {
		cfg.Database.MySQL.Port = dbPort
		cfg.Database.Postgres.Port = dbPort
	}
	if dbUser != "" {
		cfg.Database.MySQL.User = dbUser
		cfg.Database.Postgres.User = dbUser
	}
	if dbPassword != "" {
		cfg.Database.MySQL.Password = dbPassword
		cfg.Database.Postgres.Password = dbPassword
	}
	if dbName != "" {
		cfg.Database.MySQL.Database = dbName
		cfg.Database.Postgres.Database = dbName
	}
	return cfg, nil
}
