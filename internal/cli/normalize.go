package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"docgen/internal/adapter/doccomment"
	"docgen/internal/adapter/response"
	"docgen/internal/domain"
	"docgen/internal/ui"
)

var (
	normClipboard bool
	normStream    bool
	normLang      string
	normStart     string
	normEnd       string
	normJSON      bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Extract the doc comment from a saved model response",
	Long: `Run a raw model response through the same normalization and extraction
steps generate uses, and print the result. The response is read from the given
file, from the clipboard with --clipboard, or from stdin.

With --stream every input line is treated as one event fragment.

Examples:
  docgen normalize response.txt
  docgen normalize --clipboard --lang kotlin
  cat events.log | docgen normalize --stream --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	f := normalizeCmd.Flags()
	f.BoolVar(&normClipboard, "clipboard", false, "read the response from the clipboard")
	f.BoolVar(&normStream, "stream", false, "treat each line as a streamed fragment")
	f.StringVar(&normLang, "lang", "java", "language assumed when the response has no fence tag")
	f.StringVar(&normStart, "start", "", "doc comment start marker (default /**)")
	f.StringVar(&normEnd, "end", "", "doc comment end marker (default */)")
	f.BoolVar(&normJSON, "json", false, "print the result as JSON")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	input, err := readResponse(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	raw := domain.Single(input)
	if normStream {
		raw = domain.Streamed(strings.Split(strings.TrimRight(input, "\n"), "\n"))
	}

	delims := domain.Delimiters{Start: normStart, End: normEnd}
	normalized := response.NewNormalizer().Normalize(raw, normLang)
	extraction := doccomment.NewExtractor(delims).Extract(normalized.Text)

	out := cmd.OutOrStdout()
	if normJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Normalized domain.NormalizedText `json:"normalized"`
			Comment    string                `json:"comment"`
			Kind       string                `json:"kind"`
		}{normalized, extraction.Comment, extraction.Kind.String()})
	}

	ui.Info("Language: %s", ui.Bold(normalized.Lang))
	if extraction.IsWarning() {
		ui.Warning("Extraction: %s", extraction.Kind)
	} else {
		ui.Success("Extraction: %s", extraction.Kind)
	}
	fmt.Fprintln(out, extraction.Comment)
	return nil
}

func readResponse(stdin io.Reader, args []string) (string, error) {
	switch {
	case normClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}
