package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	refreshUser string
	cleanupUser string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate recommendations for one user",
	Long:  `Score the recent content pool against the user's interests and upsert the selected recommendations. Prints the refresh summary as JSON.`,
	RunE:  runRefresh,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete read and stale recommendations for one user",
	RunE:  runCleanup,
}

func init() {
	refreshCmd.Flags().StringVarP(&refreshUser, "user", "u", "", "User ID (required)")
	_ = refreshCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(refreshCmd)

	cleanupCmd.Flags().StringVarP(&cleanupUser, "user", "u", "", "User ID (required)")
	_ = cleanupCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(cleanupCmd)
}

type refreshOutput struct {
	UserID     string `json:"user_id"`
	Quality    string `json:"quality"`
	Count      int    `json:"count"`
	Backfilled int    `json:"backfilled"`
}

type cleanupOutput struct {
	UserID       string `json:"user_id"`
	DeletedRead  int    `json:"deleted_read"`
	DeletedStale int    `json:"deleted_stale"`
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), currentEnv())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.recs.Refresh(cmd.Context(), refreshUser)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", refreshUser, err)
	}
	return printJSON(refreshOutput{
		UserID:     refreshUser,
		Quality:    string(res.Quality),
		Count:      res.Count,
		Backfilled: res.Backfilled,
	})
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), currentEnv())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.recs.Cleanup(cmd.Context(), cleanupUser)
	if err != nil {
		return fmt.Errorf("cleanup %s: %w", cleanupUser, err)
	}
	return printJSON(cleanupOutput{
		UserID:       cleanupUser,
		DeletedRead:  res.DeletedRead,
		DeletedStale: res.DeletedStale,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
