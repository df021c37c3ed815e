package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"pdfbot/loader/internal"
	"pdfbot/loader/pipeline"
	"pdfbot/types"

	"github.com/spf13/cobra"
)

// openSession builds a session over the files; release must be called when done.
func openSession(ctx context.Context, cmd *cobra.Command, opts *options, paths []string) (*pipeline.Session, func(), error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	docs, err := readDocuments(paths)
	if err != nil {
		return nil, nil, err
	}
	if opts.verbose {
		printPages(ctx, cmd, docs)
	}

	p, closeStores, err := pipelineFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	sess, err := p.Build(ctx, docs)
	if err != nil {
		_ = closeStores()
		return nil, nil, wrapBuild(err)
	}
	printStats(cmd, sess)

	release := func() {
		if err := sess.Close(); err != nil {
			cmd.PrintErrln("close index:", err)
		}
		if err := closeStores(); err != nil {
			cmd.PrintErrln("close store:", err)
		}
	}
	return sess, release, nil
}

func readDocuments(paths []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, types.Document{Name: filepath.Base(path), Data: data})
	}
	return docs, nil
}

// printPages shows how much text every page yields.
func printPages(ctx context.Context, cmd *cobra.Command, docs []types.Document) {
	ex := internal.NewExtractor()
	for _, doc := range docs {
		n, err := internal.PageCount(doc.Data)
		if err != nil {
			cmd.PrintErrf("%s: page count unavailable: %v\n", doc.Name, err)
		} else {
			cmd.PrintErrf("%s: %d page(s)\n", doc.Name, n)
		}
		for _, page := range ex.Pages(ctx, doc) {
			cmd.PrintErrf("  page %d: %d chars\n", page.Number, utf8.RuneCountInString(page.Text))
		}
	}
}
