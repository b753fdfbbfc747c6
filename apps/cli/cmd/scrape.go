package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abdul-hamid-achik/webbrowser/packages/scrape"
	"github.com/spf13/cobra"
)

var followFlag bool

var inputsCmd = &cobra.Command{
	Use:   "inputs <path>",
	Short: "List the form inputs of an HTML page",
	Long: `GET an HTML page and print every <input> inside a <form> as
name = value. Inputs without a name are skipped.

Examples:
  webbrowser inputs /setup.html --host 192.168.1.1
  webbrowser inputs /login -o json --host example.com`,
	Args: cobra.ExactArgs(1),
	RunE: inputsCommand,
}

var linkCmd = &cobra.Command{
	Use:   "link <path>",
	Short: "Find the URL$1 link of an HTML page",
	Long: `GET an HTML page and print the path of the anchor named URL$1, the
continuation link some embedded web interfaces use. With --follow the link
is fetched in the same session.`,
	Args: cobra.ExactArgs(1),
	RunE: linkCommand,
}

func init() {
	linkCmd.Flags().BoolVar(&followFlag, "follow", false, "GET the link path in the same session")
}

func inputsCommand(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, r *runner) error {
		f, err := r.fetchPage(ctx, args[0])
		if err != nil {
			return err
		}

		fields, err := scrape.ExtractInputFields(f.body)
		if err != nil {
			return r.scrapeFailed(err)
		}
		delete(fields, "")
		r.formatter.FormatFields("Inputs", fields)
		return nil
	})
}

func linkCommand(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, r *runner) error {
		f, err := r.fetchPage(ctx, args[0])
		if err != nil {
			return err
		}

		path, ok, err := scrape.ExtractLinkField(f.body)
		if err != nil {
			return r.scrapeFailed(err)
		}
		if !ok {
			return r.scrapeFailed(fmt.Errorf("no %s link in %s", scrape.LinkName, f.query))
		}
		r.formatter.FormatFields("Link", map[string]string{scrape.LinkName: path})

		if followFlag {
			return r.exchange(ctx, http.MethodGet, path, r.session.Get)
		}
		return nil
	})
}

// fetchPage GETs the page to scrape and runs --expect and --schema on it.
// The exchange itself is only shown on failure or with --verbose.
func (r *runner) fetchPage(ctx context.Context, path string) (*fetched, error) {
	f := r.fetch(ctx, path, r.session.Get)
	checks, err := r.check(f)
	if err != nil || verboseFlag {
		r.show(http.MethodGet, f, checks, err)
	}
	return f, err
}

func (r *runner) scrapeFailed(err error) error {
	r.formatter.FormatError(err)
	return withCode(ExitScrapeFailure, err)
}
