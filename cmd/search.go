package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/rubiojr/topsongs/pkg/query"
	"github.com/rubiojr/topsongs/pkg/search"
	"github.com/urfave/cli/v3"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	songStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 0, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1).
			Margin(1, 0, 0, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the song catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Search query, may include a sort:<value> directive",
			},
			&cli.StringFlag{
				Name:  "sortby",
				Usage: "Sort order: " + strings.Join(sortValueNames(), ", "),
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "1-based offset of the first result",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			in := query.RawInput{Start: c.Int("start")}
			if c.IsSet("query") {
				in.Query = query.String(c.String("query"))
			}
			if c.IsSet("sortby") {
				in.SortBy = query.String(c.String("sortby"))
			}
			switch {
			case in.Start > 1:
				in.SubmitButton = query.String(query.ButtonPage)
			case in.Query != nil && in.SortBy == nil:
				in.SubmitButton = query.String("search")
			}
			return searchSongs(ctx, c.String("config"), in)
		},
	}
}

func sortValueNames() []string {
	names := make([]string, 0, len(query.SortValues))
	for _, v := range query.SortValues {
		names = append(names, string(v))
	}
	return names
}

// searchSongs runs a search the same way the web front end does and prints the page.
func searchSongs(ctx context.Context, configPath string, in query.RawInput) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	index, err := search.NewIndex(ctx, store, cfg.Web.PageLength)
	if err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	defer index.Close()

	page, err := search.NewService(index).Search(ctx, in)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("topsongs: " + page.Query))
	fmt.Println(formatSortOptions(page.SortOptions))

	if page.Err != nil {
		fmt.Println(errorStyle.Render("Search failed: " + page.Err.Error()))
		return nil
	}

	if len(page.Results.Songs) == 0 {
		fmt.Println(noDataStyle.Render("No songs found"))
		return nil
	}

	for i, song := range page.Results.Songs {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", page.Start+i, song.Title)
		b.WriteString(song.Artist)
		meta := []string{}
		if !song.Released.IsZero() {
			meta = append(meta, song.Released.Format("Jan 2, 2006"))
		}
		if len(song.Genres) > 0 {
			meta = append(meta, strings.Join(song.Genres, ", "))
		}
		if len(meta) > 0 {
			b.WriteString("\n" + metaStyle.Render(strings.Join(meta, " · ")))
		}
		fmt.Println(songStyle.Render(b.String()))
	}

	p := page.Pagination
	summary := fmt.Sprintf("Songs %d-%d of %d · page %d of %d", p.Start, p.EndIndex, p.Total, p.CurrentPage, p.TotalPages)
	if p.HasNext() {
		summary += fmt.Sprintf(" · next: --start %d", p.NextStart)
	}
	fmt.Println(summaryStyle.Render(summary))
	return nil
}

func formatSortOptions(options []query.SortOption) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		if o.Selected {
			parts = append(parts, selectedStyle.Render("["+o.Label+"]"))
		} else {
			parts = append(parts, metaStyle.Render(o.Label))
		}
	}
	return "Sort: " + strings.Join(parts, " ")
}
