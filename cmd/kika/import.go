package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kika/internal/config"
	"kika/internal/db"
	applog "kika/internal/log"
	"kika/internal/store"
)

// openDatabaseFunc is swapped out in tests.
var openDatabaseFunc = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := db.Initialize(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(database); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return database, nil
}

func importCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create or replace materials from a file in the configured database",
		Long: `import upserts every material of the file by material_id, one
transaction per material. Connection settings come from DATABASE_URL and
the other DATABASE_* variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			loaded, err := loadMaterials(path, key)
			if err != nil {
				return fmt.Errorf("read materials: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Database.UseMock {
				return fmt.Errorf("DATABASE_URL must be set to import materials")
			}

			database, err := openDatabaseFunc(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}

			created, updated := 0, 0
			for _, l := range loaded {
				isNew, err := store.Upsert(ctx, database, l.material, "file:"+path)
				if err != nil {
					return fmt.Errorf("import %q: %w", l.key, err)
				}
				if isNew {
					created++
				} else {
					updated++
				}
				applog.Debug(ctx, "material imported", "key", l.key, "materialID", l.material.ID, "created", isNew)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d materials (%d created, %d updated)\n", len(loaded), created, updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Only import the material with this key")
	return cmd
}
