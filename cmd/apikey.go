package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
	Long:  `Issue, list and expire the keys accepted in the X-API-Key header.`,
}

var apiKeyIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		key, err := db.CreateAPIKey(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to issue api key: %w", err)
		}
		fmt.Println(key.Key)
		return nil
	},
}

var apiKeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		keys, err := db.GetAPIKeys(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list api keys: %w", err)
		}
		if len(keys) == 0 {
			fmt.Println("No API keys issued.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSTATUS\tISSUED") //nolint: errcheck
		for _, key := range keys {
			status := "active"
			if key.Expired {
				status = "expired"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", key.Key, status, timediff.TimeDiff(key.CreatedAt)) //nolint: errcheck
		}
		return w.Flush()
	},
}

var apiKeyExpireCmd = &cobra.Command{
	Use:   "expire <key>",
	Short: "Expire an API key",
	Args:  cobra.ExactArgs(1),
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

		if err := db.ExpireAPIKey(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to expire api key: %w", err)
		}
		fmt.Println("API key expired.")
		return nil
	},
}

func init() {
	apiKeyCmd.AddCommand(apiKeyIssueCmd, apiKeyListCmd, apiKeyExpireCmd)
	rootCmd.AddCommand(apiKeyCmd)
}
