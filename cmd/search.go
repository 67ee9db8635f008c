package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newSearchCmd creates the 'search' subcommand for one-shot CLI searches.
func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single blog search and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchCommand,
	}
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	svc := buildService(cfg, logger)
	query := strings.Join(args, " ")

	result, err := svc.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	payload := map[string]any{
		"image_urls": []string{},
	}
	if !result.Matched {
		payload["message"] = "No matching blog found."
	} else {
		payload["title"] = result.Title
		payload["url"] = result.URL
		payload["content_preview"] = result.Preview
		payload["full_content"] = result.Content
		if result.Images != nil {
			payload["image_urls"] = result.Images
		}
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
