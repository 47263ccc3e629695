package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/projection"
	"github.com/ramonehamilton/rifty/internal/storage"
)

// styles are bound to one writer so colors are dropped when it is not a terminal.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	box    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5470C6")),
		header: r.NewStyle().Bold(true).Underline(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#888888")),
		good:   r.NewStyle().Foreground(lipgloss.Color("#3BA272")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("#EE6666")),
		box:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func displayCollection(w io.Writer, snap facade.Snapshot) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render("Collection"))
	fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("Showing %d of %d cards, sorted by %s (%s)",
		snap.DisplayedCount, snap.TotalCount, snap.Sort.Field, snap.Sort.Direction)))
	if f := describeFilter(snap.Filter); f != "" {
		fmt.Fprintln(w, st.muted.Render("Filter: "+f))
	}
	fmt.Fprintln(w)

	if len(snap.Items) == 0 {
		fmt.Fprintln(w, "No cards match.")
		return
	}

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-8s %-32s %-9s %-8s %-6s %4s %4s  %s",
		"Number", "Name", "Rarity", "Category", "Kind", "Cost", "Pow", "Instance")))
	for _, item := range snap.Items {
		fmt.Fprintf(w, "%-8s %-32s %-9s %-8s %-6s %4d %4d  %s\n",
			printingLabel(item.Card), truncate(item.Name, 32), item.Rarity, item.Category, item.Kind,
			item.Cost, item.Power, st.muted.Render(item.InstanceID))
	}
}

func describeFilter(f collection.Filter) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Rarity != collection.All {
		parts = append(parts, "rarity="+string(f.Rarity))
	}
	if f.Category != collection.All {
		parts = append(parts, "category="+string(f.Category))
	}
	if f.Kind != collection.All {
		parts = append(parts, "kind="+string(f.Kind))
	}
	return strings.Join(parts, " ")
}

func displaySets(w io.Writer, view projection.CatalogView, showCards bool) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render("Set Completion"))
	fmt.Fprintln(w)
	if len(view.Sets) == 0 {
		fmt.Fprintln(w, "No sets to display.")
		return
	}

	for _, set := range view.Sets {
		s := set.Stats
		lines := []string{
			st.header.Render(fmt.Sprintf("%s - %s", set.SetCode, set.SetName)),
			fmt.Sprintf("Overall: %d/%d (%d%%)  Duplicates: %d", s.UniqueOwned, s.TotalInSet, s.CompletionPercent, s.DuplicateCount),
		}
		for _, rc := range s.ByRarity {
			lines = append(lines, fmt.Sprintf("  %-9s %d/%d", rc.Rarity, rc.Owned, rc.Total))
		}
		if showCards {
			lines = append(lines, "")
			for _, e := range set.Entries {
				line := fmt.Sprintf("%-6s %-32s x%d", printingLabel(e.Card), truncate(e.Name, 32), e.Owned)
				if e.Owned > 0 {
					line = st.good.Render(line)
				} else {
					line = st.muted.Render(line)
				}
				lines = append(lines, line)
			}
		}
		fmt.Fprintln(w, st.box.Render(strings.Join(lines, "\n")))
	}
}

func displayBulkResult(w io.Writer, result collection.BulkResult) {
	st := newStyles(w)

	fmt.Fprintln(w, st.good.Render(fmt.Sprintf("Added %d card(s) from %s", len(result.Added), result.SetCode)))
	for _, item := range result.Added {
		fmt.Fprintf(w, "  + %-6s %s\n", printingLabel(item.Card), item.Name)
	}
	if len(result.Unmatched) > 0 {
		fmt.Fprintln(w, st.warn.Render("No match: "+strings.Join(result.Unmatched, " ")))
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintln(w, st.warn.Render("Skipped: "+strings.Join(result.Skipped, " ")))
	}
	if len(result.Duplicates) > 0 {
		fmt.Fprintln(w, st.warn.Render("Matched more than one printing: "+strings.Join(result.Duplicates, " ")))
	}
}

func displaySearch(w io.Writer, results []catalog.SearchResult) {
	st := newStyles(w)

	if len(results) == 0 {
		fmt.Fprintln(w, "No cards found.")
		return
	}
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-5s %-34s %-32s %s", "Score", "ID", "Name", "Set")))
	for _, r := range results {
		fmt.Fprintf(w, "%5d %-34s %-32s %s\n", r.Score, r.Card.ID, truncate(r.Card.Name, 32), r.Card.SetCode)
	}
}

func displayBackups(w io.Writer, backups []storage.BackupInfo) {
	st := newStyles(w)

	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return
	}
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-32s %-19s %10s  %s", "Name", "Modified", "Size", "SHA-256")))
	for _, b := range backups {
		fmt.Fprintf(w, "%-32s %-19s %10d  %s\n",
			b.Name, b.ModTime.Format("2006-01-02 15:04:05"), b.Size, st.muted.Render(shortHash(b.Checksum)))
	}
}

// printingLabel renders a collector number with the alternate suffix, e.g. "OGN-7a".
func printingLabel(c catalog.Card) string {
	label := fmt.Sprintf("%s-%d", c.SetCode, c.CollectorNumber)
	if c.IsAlternate {
		label += "a"
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortHash(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
