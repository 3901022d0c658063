// coin-report prints collection status tables from a coin-tracker
// database without starting the server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"cointracker/internal/catalog"
	"cointracker/internal/collection"
)

func main() {
	fs := ff.NewFlagSet("coin-report")
	var (
		dbPath      = fs.StringLong("db", "coin-tracker.db", "Database file path")
		showMissing = fs.BoolLong("missing", "List missing variants instead of stats")
		country     = fs.StringLong("country", "", "Restrict the missing list to one country")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("COIN_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.New(catalog.Standard(time.Now().Year()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "building catalog: %v\n", err)
		os.Exit(1)
	}

	db, err := collection.NewBoltDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger, err := collection.NewLedger(cat, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading ledger: %v\n", err)
		os.Exit(1)
	}

	if *showMissing {
		printMissing(ledger, *country)
		return
	}
	printStats(ledger)
}

func printStats(ledger *collection.Ledger) {
	stats := ledger.Stats()
	fmt.Printf("Collection: %d/%d variants owned (%.2f%%), %d missing\n\n",
		stats.OwnedCount, stats.TotalVariants, stats.CompletionRatio*100, stats.MissingCount)

	breakdown := ledger.StatsBreakdown()
	for _, section := range []struct {
		title  string
		groups []collection.GroupStat
	}{
		{"By country", breakdown.ByCountry},
		{"By year", breakdown.ByYear},
		{"By value", breakdown.ByValue},
	} {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(section.title)
		t.AppendHeader(table.Row{"", "Owned", "Total", "Done"})
		for _, g := range section.groups {
			t.AppendRow(table.Row{g.Label, g.Owned, g.Total, fmt.Sprintf("%.1f%%", g.Ratio*100)})
		}
		t.Render()
		fmt.Println()
	}
}

func printMissing(ledger *collection.Ledger, country string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Missing coins")
	t.AppendHeader(table.Row{"Country", "Year", "Value", "Mint"})
	for _, v := range ledger.Missing() {
		if country != "" && string(v.Country) != country {
			continue
		}
		t.AppendRow(table.Row{v.Country, v.Year, v.Value.String(), v.Mint})
	}
	t.Render()
}
