package main

import (
	"context"
	"errors"
	"strings"

	"pdfbot/types"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "ask -q QUESTION file.pdf [file.pdf...]",
		Short: "Answer one question about the documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(question) == "" {
				return types.ErrEmptyQuery
			}
			ctx := cmd.Context()
			sess, release, err := openSession(ctx, cmd, opts, args)
			if err != nil {
				return err
			}
			defer release()

			return answer(cmd, sess.Ask, question, opts.topK)
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

type askFunc func(ctx context.Context, query string, topK int) (*types.Answer, error)

// answer prints the answer and its sources. When synthesis fails the retrieved
// sources are still printed.
func answer(cmd *cobra.Command, ask askFunc, question string, topK int) error {
	ans, err := ask(cmd.Context(), question, topK)
	if err != nil {
		var synErr *types.SynthesisError
		if errors.As(err, &synErr) {
			printSources(cmd, synErr.Retrieved)
		}
		return err
	}
	cmd.Println(strings.TrimSpace(ans.Text))
	printSources(cmd, ans.Retrieved)
	return nil
}

func printSources(cmd *cobra.Command, retrieved types.RetrievalResult) {
	if len(retrieved) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, sc := range retrieved {
		cmd.Printf("  [%d] chunk %d (%.2f) %s\n", i+1, sc.Chunk.Position, sc.Score, snippet(sc.Chunk.Content, 80))
	}
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
