package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runFlags scrapeFlags

func init() {
	runFlags.register(runCmd.Flags(), true)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--competition <id>]... [--kinds rosters,standings]",
	Short: "Logs in and scrapes the private league pages, printing one JSON result.",
	Long: "Logs in and scrapes the private league pages. With several --competition " +
		"flags every competition is scraped in turn with the same session and the " +
		"output is {\"competitions\": [...]}.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		req := runFlags.request(env.cfg.Scraper)
		if err := runFlags.loadCookies(&req, time.Now()); err != nil {
			env.logger.Warn("cookie jar ignored", "path", runFlags.cookiesPath, "error", err)
		}

		started := time.Now()
		var (
			result  any
			baseURL = req.BaseURL
		)
		if len(runFlags.competitions) > 1 {
			out, err := env.app.Scrape.RunCompetitions(ctx, req, runFlags.competitions)
			if err != nil {
				return fmt.Errorf("scrape competitions: %w", err)
			}
			if n := len(out.Competitions); n > 0 {
				runFlags.saveJar(env.logger, baseURL, out.Competitions[n-1].Cookies)
			}
			result = out
		} else {
			if len(runFlags.competitions) == 1 {
				req.CompetitionID = runFlags.competitions[0]
			}
			out, err := env.app.Scrape.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("scrape: %w", err)
			}
			runFlags.saveJar(env.logger, baseURL, out.Cookies)
			result = out
		}

		env.logger.Info("run finished", "elapsed", time.Since(started))
		return writeResult(cmd.OutOrStdout(), runFlags.outputPath, result, runFlags.pretty)
	},
}
