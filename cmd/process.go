package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/teaser-cli/internal/model"
	"github.com/sells-group/teaser-cli/internal/pipeline"
)

var (
	processName  string
	processURL   string
	processOut   string
	processBlind bool
)

var processCmd = &cobra.Command{
	Use:   "process <documents-dir>",
	Short: "Build a company profile from a directory of documents",
	Long:  "Discovers workbooks and text files in the directory, runs the extraction pipeline, and writes profile.json and citations.json to the output directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if processBlind {
			cfg.Pipeline.Blind = true
		}

		env, err := initPipeline(ctx, "process")
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := pipeline.DiscoverDocuments(args[0])
		if err != nil {
			return err
		}
		if len(docs) == 0 && processURL == "" {
			return eris.Errorf("no processable documents in %s", args[0])
		}

		proj, err := env.Store.CreateProject(ctx, processName, processURL)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if _, err := env.Store.AddFile(ctx, proj.ID, doc.Path, doc.Kind); err != nil {
				return err
			}
		}

		profile, err := env.Pipeline.Run(ctx, proj.ID)
		if err != nil {
			return err
		}

		outDir := processOut
		if outDir == "" {
			outDir = args[0]
		}
		if err := writeProfile(outDir, profile); err != nil {
			return err
		}

		zap.L().Info("profile written",
			zap.String("project_id", proj.ID),
			zap.String("out_dir", outDir),
			zap.String("sector", profile.Sector))
		return nil
	},
}

// writeProfile writes profile.json and citations.json side by side. The
// citation list is duplicated standalone so it can be reviewed without the
// profile.
func writeProfile(dir string, profile *model.CompanyProfile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}

	if err := writeJSON(filepath.Join(dir, "profile.json"), profile); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "citations.json"), profile.Citations)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func init() {
	processCmd.Flags().StringVar(&processName, "name", "", "company name")
	processCmd.Flags().StringVar(&processURL, "url", "", "company website for public context")
	processCmd.Flags().StringVar(&processOut, "out", "", "output directory (default: documents dir)")
	processCmd.Flags().BoolVar(&processBlind, "blind", false, "replace the company name with a project codename")
	processCmd.MarkFlagRequired("name") //nolint:errcheck
	rootCmd.AddCommand(processCmd)
}
