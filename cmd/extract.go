package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/teaser-cli/internal/extract"
	"github.com/sells-group/teaser-cli/internal/fetcher"
	"github.com/sells-group/teaser-cli/internal/merge"
	"github.com/sells-group/teaser-cli/internal/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a single document and dump the raw packet",
	Long:  "Runs the document extractors over one workbook or text file and prints the resulting packet as JSON. Debugging aid; nothing is persisted or anonymized.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		path := args[0]
		name := filepath.Base(path)
		kind, ok := fetcher.KindOf(name)
		if !ok {
			return eris.Errorf("unsupported file type: %s", name)
		}

		vocab := extract.DefaultVocabulary()
		pkt := model.Packet{SourceFile: name}

		switch kind {
		case model.FileKindWorkbook:
			sheets, err := fetcher.ReadSheets(path, fetcher.WorkbookOptions{})
			if err != nil {
				return err
			}
			ext := extract.NewTableExtractor(vocab)
			for _, sheet := range sheets {
				if fin, ok := ext.Extract(sheet.Grid, name, sheet.Name); ok {
					pkt.Financials = merge.MergeFinancials(pkt.Financials, fin)
				}
			}
		case model.FileKindText:
			text, err := fetcher.ReadText(path, fetcher.DefaultMaxTextBytes)
			if err != nil {
				return err
			}
			pkt.Text = text
			pkt.KPIs = extract.ExtractKPIs(text)
			if nar := extract.NewNarrativeExtractor(vocab).Extract(text); !nar.IsZero() {
				pkt.Narrative = &nar
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pkt)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
