package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat file.pdf [file.pdf...]",
		Short: "Answer questions from stdin, one per line",
		Long: `Builds the index once, then answers every line read from stdin.
Each question is answered on its own, previous answers are not remembered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, release, err := openSession(ctx, cmd, opts, args)
			if err != nil {
				return err
			}
			defer release()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			cmd.Print("> ")
			for scanner.Scan() {
				if ctx.Err() != nil {
					return nil
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					cmd.Print("> ")
					continue
				}
				if question == "exit" || question == "quit" {
					return nil
				}
				// ошибка одного вопроса не прерывает сессию
				if err := answer(cmd, sess.Ask, question, opts.topK); err != nil {
					cmd.PrintErrln("error:", err)
				}
				cmd.Print("\n> ")
			}
			return scanner.Err()
		},
	}
}
