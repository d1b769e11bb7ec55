package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamtrace/relato/pkg/config"
	"github.com/teamtrace/relato/pkg/consolidate"
	"github.com/teamtrace/relato/pkg/store"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Deduplicate stored objects by content hash",
	Long: `Scan stored objects, detect duplicates by content-derived hash and
report the unique survivors. Among duplicates the most recently updated
copy is kept.`,
	RunE: runConsolidate,
}

var (
	consolidatePlatform   string
	consolidateObjectType string
)

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().StringVar(&consolidatePlatform, "platform", "", "Restrict objects to one platform")
	consolidateCmd.Flags().StringVar(&consolidateObjectType, "object-type", "", "Restrict objects to one type")
	consolidateCmd.Flags().String("store-driver", "", "Store driver (memory, badger, neo4j, postgres)")
	consolidateCmd.Flags().String("store-uri", "", "Store URI/DSN/path")

	viper.BindPFlag("store.driver", consolidateCmd.Flags().Lookup("store-driver"))
	viper.BindPFlag("store.uri", consolidateCmd.Flags().Lookup("store-uri"))
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	st, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}
	defer st.Close()

	filter := store.ObjectFilter{Platform: consolidatePlatform, ObjectType: consolidateObjectType}
	result, err := consolidate.ConsolidateStore(context.Background(), st, filter, logger)
	if err != nil {
		return fmt.Errorf("consolidation failed: %w", err)
	}

	fmt.Printf("%d unique objects, %d duplicates removed\n",
		len(result.Objects), result.DuplicatesRemoved)
	return nil
}
