package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var competitionsFlags scrapeFlags

func init() {
	competitionsFlags.register(competitionsCmd.Flags(), false)
	rootCmd.AddCommand(competitionsCmd)
}

var competitionsCmd = &cobra.Command{
	Use:   "competitions",
	Short: "Lists the competitions selectable inside the league.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		req := competitionsFlags.request(env.cfg.Scraper)
		if err := competitionsFlags.loadCookies(&req, time.Now()); err != nil {
			env.logger.Warn("cookie jar ignored", "path", competitionsFlags.cookiesPath, "error", err)
		}

		list, err := env.app.Scrape.ListCompetitions(ctx, req)
		competitionsFlags.saveJar(env.logger, req.BaseURL, list.Cookies)
		if err != nil {
			return fmt.Errorf("list competitions: %w", err)
		}
		return writeResult(cmd.OutOrStdout(), competitionsFlags.outputPath, list, competitionsFlags.pretty)
	},
}
