package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pdfbot/config"

	"golang.org/x/term"
)

var errNoAPIKey = errors.New("OpenAI API key is required: pass --api-key or set OPENAI_API_KEY")

// resolveAPIKey prefers the flag, then env or config file (already merged in
// cfg), and finally asks on the terminal.
func resolveAPIKey(cfg *config.Config, flagKey string, in io.Reader, out io.Writer) (string, error) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, nil
	}
	if cfg.APIKey != "" || !cfg.NeedsAPIKey() {
		return cfg.APIKey, nil
	}

	fmt.Fprint(out, "OpenAI API key: ")
	key, err := readSecret(in)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	if key == "" {
		return "", errNoAPIKey
	}
	return key, nil
}

func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	// побайтно, чтобы не съесть вопросы, идущие следом в stdin
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
