package cmd

import (
	"fmt"

	"github.com/ccoveille/go-safecast"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display row counts for every table and the space taken by stored images.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}
		imageBytes, err := safecast.Convert[uint64](stats.ImageBytes)
		if err != nil {
			return err
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s (admins %d, students %d, teachers %d)\n",
			humanize.Comma(stats.Users), stats.Admins, stats.Students, stats.Teachers)
		fmt.Printf("Categories: %s\n", humanize.Comma(stats.Categories))
		fmt.Printf("Items: %s\n", humanize.Comma(stats.Items))
		fmt.Printf("Wishlists: %s\n", humanize.Comma(stats.Wishlists))
		fmt.Printf("API Keys: %d (%d active)\n", stats.APIKeys, stats.ActiveAPIKeys)
		fmt.Printf("Stored Images: %s\n", humanize.Bytes(imageBytes))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
