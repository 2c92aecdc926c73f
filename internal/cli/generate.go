package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docgen/config"
	"docgen/internal/adapter/analyzer"
	"docgen/internal/adapter/cache"
	"docgen/internal/adapter/fs"
	"docgen/internal/adapter/git"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/methods"
	"docgen/internal/domain"
	"docgen/internal/port"
	"docgen/internal/ui"
	"docgen/internal/usecase"
)

var (
	genProvider      string
	genModel         string
	genBaseURL       string
	genInline        bool
	genGuided        bool
	genStream        bool
	genGPT4          bool
	genGPT35_16k     bool
	genLocalModel    string
	genOllamaModel   string
	genOllamaBaseURL string
	genAzureDeploy   string
	genNoCache       bool
	genForce         bool
	genDryRun        bool
	genShowRaw       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <file|dir>",
	Short: "Generate doc comments for the methods of a file or directory",
	Long: `Generate a doc comment for every method that does not have one yet.

For a directory, the files matching files.includes (and not files.excludes)
in the config are processed one after another. Each file is rewritten once,
after all of its methods were handled. The previous content is kept in
.docgen/state.db so that 'docgen undo' can restore it.

Examples:
  docgen generate src/Main.java
  docgen generate src/Main.java --gpt4 --inline
  docgen generate core --ollama-model codellama
  docgen generate src/Main.java --guided --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	f := generateCmd.Flags()
	f.StringVar(&genProvider, "provider", "", "model provider: openai, deepseek, ollama, llamacpp, azure, custom, stream, gemini, mock")
	f.StringVar(&genModel, "model", "", "model name (default depends on provider)")
	f.StringVar(&genBaseURL, "base-url", "", "endpoint base URL")
	f.BoolVar(&genInline, "inline", false, "also add inline comments to method bodies")
	f.BoolVar(&genGuided, "guided", false, "confirm each method before generating")
	f.BoolVar(&genStream, "stream", false, "request a server-sent event stream")
	f.BoolVar(&genGPT4, "gpt4", false, "use GPT-4")
	f.BoolVar(&genGPT35_16k, "gpt3_5-16k", false, "use GPT-3.5 16k")
	f.StringVar(&genLocalModel, "local-model", "", "model served by a local llama.cpp server")
	f.StringVar(&genOllamaModel, "ollama-model", "", "Ollama model")
	f.StringVar(&genAzureDeploy, "azure-deployment", "", "Azure OpenAI deployment name")
	f.StringVar(&genOllamaBaseURL, "ollama-base-url", "http://localhost:11434", "Ollama base URL")
	f.BoolVar(&genNoCache, "no-cache", false, "always call the model")
	f.BoolVar(&genForce, "force", false, "document files with unstaged changes")
	f.BoolVar(&genDryRun, "dry-run", false, "print the result instead of writing it")
	f.BoolVar(&genShowRaw, "show-raw", false, "print the raw model output")
}

// applyModelFlags folds the provider shortcuts into the LLM config.
func applyModelFlags(c *config.LLMConfig) {
	switch {
	case genGPT4:
		c.Provider, c.Model = "openai", "gpt-4"
	case genGPT35_16k:
		c.Provider, c.Model = "openai", "gpt-3.5-turbo-16k"
	case genOllamaModel != "":
		c.Provider, c.Model, c.BaseURL = "ollama", genOllamaModel, genOllamaBaseURL
	case genAzureDeploy != "":
		c.Provider, c.Model = "azure", genAzureDeploy
	case genLocalModel != "":
		c.Provider, c.Model = "llamacpp", genLocalModel
	}
	if genProvider != "" {
		c.Provider = genProvider
	}
	if genModel != "" {
		c.Model = genModel
	}
	if genBaseURL != "" {
		c.BaseURL = genBaseURL
	}
	if genStream {
		c.Stream = true
	}
	if c.Model == "" {
		c.Model = llm.DefaultModel(c.Provider)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()
	log := GetLogger()
	llmCfg := cfg.LLM
	applyModelFlags(&llmCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	backend, err := llm.NewBackend(ctx, llmCfg)
	if err != nil {
		return err
	}

	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Cache.Enabled && !genNoCache {
		respCache := cache.NewResponseCache(cfg.Cache.MemorySize, cfg.Cache.TTL())
		backend = cache.NewCachedBackend(backend, respCache, st, log)
	}

	guided := genGuided || cfg.Generate.Guided
	var confirmer usecase.Confirmer
	if guided {
		confirmer = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	opts := usecase.GenerateOptions{
		Inline:          genInline || cfg.Generate.Inline,
		Guided:          guided,
		DryRun:          genDryRun,
		TokenLimit:      cfg.TokenLimitFor(llmCfg.Model),
		Delimiters:      cfg.Generate.Delimiters,
		RequireCleanGit: cfg.Files.RequireCleanGit && !genForce,
	}

	uc := usecase.NewGenerateUseCase(
		fs.NewFiles(),
		methods.NewRegistry(),
		backend,
		analyzer.NewTokenizer(),
		st,
		git.New(),
		confirmer,
		log,
		opts,
	)

	if genShowRaw || cfg.Generate.ShowRaw {
		uc.OnRawResponse(func(method string, raw domain.RawResponse) {
			ui.Info("--- raw output for %s ---", ui.Bold(method))
			ui.Info("%s", ui.Muted(rawText(raw)))
		})
	}

	ui.Header("Documenting %s with %s", target, backend.Name())

	var results []*usecase.FileResult
	if info.IsDir() {
		walker := fs.NewWalker(cfg.Files.Includes, cfg.Files.Excludes)
		results, err = generateDir(ctx, uc, target, walker, guided)
	} else {
		uc.OnProgress(newMethodProgress(filepath.Base(target), guided))
		var result *usecase.FileResult
		result, err = uc.Generate(ctx, target)
		results = append(results, result)
	}

	printGenerateResults(results)

	if genDryRun && !info.IsDir() && len(results) == 1 && results[0].Preview != "" {
		fmt.Fprint(cmd.OutOrStdout(), results[0].Preview)
	}
	return err
}

func generateDir(ctx context.Context, uc *usecase.GenerateUseCase, root string, walker port.FileWalker, guided bool) ([]*usecase.FileResult, error) {
	uc.OnFileStart(func(path string, index, total int) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if index == 0 {
			ui.Info("Found %d files", total)
		}
		uc.OnProgress(newMethodProgress(fmt.Sprintf("[%d/%d] %s", index+1, total, rel), guided))
	})

	results, err := uc.GenerateDir(ctx, root, walker)
	if err == nil && len(results) == 0 {
		ui.Warning("No matching files under %s", root)
	}
	return results, err
}

// newMethodProgress draws one progress bar per file. Guided runs prompt on
// the terminal, so they get no bar.
func newMethodProgress(name string, guided bool) usecase.ProgressFunc {
	if guided {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(processed, total int, method string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionSetDescription("[cyan]"+name+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		bar.Describe(fmt.Sprintf("[cyan]%s[reset] %s", name, method))
		bar.Set(processed)
	}
}

func printGenerateResults(results []*usecase.FileResult) {
	generated, skipped, failed := 0, 0, 0
	for _, r := range results {
		if r == nil {
			continue
		}
		generated += len(r.Generated)
		skipped += len(r.Skipped)

		for _, s := range r.Skipped {
			ui.Warning("%s: method %s skipped (%s)", filepath.Base(r.Path), ui.Bold(s.Name), s.Reason)
		}
		for _, w := range r.Warnings {
			ui.Warning("%s: %s", filepath.Base(r.Path), w)
		}
		for _, e := range r.Errors {
			failed++
			ui.Error("%s: %s", filepath.Base(r.Path), e)
		}
		for _, name := range r.Generated {
			ui.Success("Doc comment for %s generated", ui.Bold(name))
		}
	}

	ui.Info("")
	ui.Header("Generation complete:")
	ui.Info("  Files:     %d", len(results))
	ui.Info("  Generated: %d", generated)
	ui.Info("  Skipped:   %d", skipped)
	if failed > 0 {
		ui.Info("  Errors:    %d", failed)
	}
}

func rawText(raw domain.RawResponse) string {
	if raw.Form == domain.FormStreamed {
		return strings.Join(raw.Fragments, "\n")
	}
	return raw.Text
}

// promptConfirmer asks y/n questions on the terminal.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *promptConfirmer) Confirm(method string) (bool, error) {
	fmt.Fprintf(c.out, "Generate doc for %s? (y/n) ", ui.Bold(method))
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}
