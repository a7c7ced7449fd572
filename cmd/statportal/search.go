package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/search"
)

func newSearchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Search the catalog interactively",
		Long: `Reads queries from standard input, one per line, and prints the answer
to the latest one. Lines typed faster than the debounce delay replace each
other, as keystrokes do in the portal search box.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg, stderrOutput)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), client.Search, cfg.Search, logger, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runSearch feeds input lines to a Searcher and prints its results. It
// returns once input is exhausted and the last query has been answered.
func runSearch(
	ctx context.Context,
	fetch search.FetchFunc,
	cfg config.SearchConfig,
	logger observability.Logger,
	in io.Reader,
	out io.Writer,
) error {
	s := search.NewSearcher(fetch,
		search.WithDebounce(cfg.Debounce.Duration()),
		search.WithMinQueryLength(cfg.MinQueryLength),
		search.WithPreviewSize(cfg.PreviewSize),
		search.WithLogger(logger))
	defer s.Close()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			scanErr <- err
			close(lines)
		}()
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimRight(sc.Text(), "\r"):
			case <-ctx.Done():
				err = ctx.Err()
				return
			}
		}
		err = sc.Err()
	}()

	var (
		last      string
		submitted bool
		answered  bool
		eof       bool
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				eof = true
				if err := <-scanErr; err != nil {
					return fmt.Errorf("reading queries: %w", err)
				}
				if !submitted || answered {
					return nil
				}
				continue
			}
			last, submitted, answered = line, true, false
			s.Submit(line)
		case res := <-s.Results():
			printResult(out, res)
			if res.Query == last {
				answered = true
			}
			if eof && answered {
				return nil
			}
		}
	}
}

func printResult(out io.Writer, res search.Result) {
	if res.Err != nil {
		fmt.Fprintf(out, "%q: search failed: %v\n", res.Query, res.Err)
		return
	}
	fmt.Fprintf(out, "%q: %d result(s)\n", res.Query, res.Total)
	for _, it := range res.Items {
		fmt.Fprintf(out, "  [%s] %s  %s\n", it.Type, it.Name, it.Link)
	}
	if res.Truncated {
		fmt.Fprintf(out, "  ... %d more\n", res.Total-len(res.Items))
	}
}
