package commands

import (
	"errors"
	"fmt"
	"os"

	"bunpro-assist/lib/scrapers/bunpro"
	"bunpro-assist/lib/serviceutil"
	"bunpro-assist/services/grammar"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showSnapshot *string

func init() {
	showSnapshot = showCmd.Flags().String("snapshot", "", "The snapshot file to read.")
	rootCmd.AddCommand(showCmd)
}

func renderSection(title string, points []bunpro.GrammarPoint) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Grammar", "Japanese", "Meaning", "Link"})
	for _, p := range points {
		japanese := ""
		meaning := ""
		if p.Structure != nil {
			japanese = p.Structure.Japanese
			meaning = p.Structure.Meaning
		}
		t.AppendRow(table.Row{p.Text, japanese, meaning, p.Link})
	}
	t.Render()
}

var showCmd = &cobra.Command{
	Use:   "show [--snapshot <path/to/snapshot.json>]",
	Short: "Displays the study data from the last fetch.",
	Run: func(cmd *cobra.Command, args []string) {
		store := grammar.NewStore(*showSnapshot)
		data, err := store.Load()
		if errors.Is(err, grammar.NoSnapshotErr) {
			fmt.Printf("%s does not exist yet, run `bunpro-cli fetch` first.\n", store.Path())
			os.Exit(1)
		}
		if err != nil {
			serviceutil.Fatal("failed to read snapshot", err)
		}

		renderSection("Troubled Grammar", data.TroubledGrammar)
		renderSection("Ghost Reviews", data.GhostReviews)
	},
}
