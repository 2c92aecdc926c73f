package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docgen/internal/adapter/doccomment"
	"docgen/internal/adapter/methods"
	"docgen/internal/adapter/patcher"
	"docgen/internal/adapter/response"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// Confirmer asks whether a method should be documented.
type Confirmer interface {
	Confirm(method string) (bool, error)
}

// ProgressFunc is called after each method with the number handled so far.
type ProgressFunc func(processed, total int, method string)

// GenerateOptions control one generate run.
type GenerateOptions struct {
	Inline     bool
	Guided     bool
	DryRun     bool
	TokenLimit int               // 0 disables the check
	Delimiters domain.Delimiters // empty means the language default

	// RequireCleanGit refuses files with unstaged changes.
	RequireCleanGit bool
}

// SkippedMethod records why a method was left alone.
type SkippedMethod struct {
	Name   string
	Reason string
}

// FileResult contains the results of documenting one file.
type FileResult struct {
	Path      string
	Language  string
	Methods   int
	Generated []string
	Skipped   []SkippedMethod
	Warnings  []string
	Errors    []string
	Stats     patcher.Stats
	Changed   bool
	JournalID string
	// Preview holds the patched content of a dry run.
	Preview string
}

// GenerateUseCase documents the methods of source files.
type GenerateUseCase struct {
	files      port.FileStore
	registry   *methods.Registry
	backend    port.Backend
	tokenizer  port.Tokenizer
	journal    port.Journal
	vcs        port.VCS
	confirmer  Confirmer
	normalizer *response.Normalizer
	logger     *zap.Logger
	opts       GenerateOptions

	progress  ProgressFunc
	rawHook   func(method string, raw domain.RawResponse)
	fileStart func(path string, index, total int)
}

// NewGenerateUseCase creates a new generate use case. journal, vcs and
// confirmer may be nil.
func NewGenerateUseCase(
	files port.FileStore,
	registry *methods.Registry,
	backend port.Backend,
	tokenizer port.Tokenizer,
	journal port.Journal,
	vcs port.VCS,
	confirmer Confirmer,
	logger *zap.Logger,
	opts GenerateOptions,
) *GenerateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateUseCase{
		files:      files,
		registry:   registry,
		backend:    backend,
		tokenizer:  tokenizer,
		journal:    journal,
		vcs:        vcs,
		confirmer:  confirmer,
		normalizer: response.NewNormalizer(),
		logger:     logger,
		opts:       opts,
	}
}

// OnProgress registers a per-method progress callback.
func (u *GenerateUseCase) OnProgress(fn ProgressFunc) {
	u.progress = fn
}

// OnFileStart registers a callback run before each file of a directory run.
func (u *GenerateUseCase) OnFileStart(fn func(path string, index, total int)) {
	u.fileStart = fn
}

// OnRawResponse registers a callback that sees every raw model response.
func (u *GenerateUseCase) OnRawResponse(fn func(method string, raw domain.RawResponse)) {
	u.rawHook = fn
}

// Generate documents every undocumented method in path and writes the file
// once. Per-method failures are recorded in the result and do not stop the run.
func (u *GenerateUseCase) Generate(ctx context.Context, path string) (*FileResult, error) {
	result := &FileResult{Path: path}
	log := u.logger.With(zap.String("path", path))

	if err := u.checkClean(path, result); err != nil {
		return result, err
	}

	content, err := u.files.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser, lang, err := u.registry.ForPath(path)
	if err != nil {
		return result, err
	}
	result.Language = lang.Name

	units, err := parser.Parse([]byte(content))
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	result.Methods = len(units)
	log.Debug("parsed methods", zap.String("language", lang.Name), zap.Int("methods", len(units)))

	delims := lang.Delimiters
	if u.opts.Delimiters.Start != "" && u.opts.Delimiters.End != "" {
		delims = u.opts.Delimiters
	}
	extractor := doccomment.NewExtractor(delims)
	builder := patcher.NewBuilder()

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		u.documentMethod(ctx, unit, lang, delims, extractor, builder, result)
		if u.progress != nil {
			u.progress(i+1, len(units), unit.Name)
		}
	}

	set := builder.PatchSet()
	if set.Len() == 0 {
		if len(result.Errors) > 0 {
			return result, fmt.Errorf("no method documented in %s: %d errors", path, len(result.Errors))
		}
		return result, nil
	}

	updated, stats := patcher.Apply(content, set)
	result.Stats = stats
	for _, id := range stats.Missed {
		result.Warnings = append(result.Warnings, fmt.Sprintf("method %s no longer found in file", id))
	}
	if updated == content {
		return result, nil
	}

	if u.opts.DryRun {
		result.Preview = updated
		return result, nil
	}

	if u.journal != nil {
		id, err := u.journal.RecordJournal(path, content, updated)
		if err != nil {
			log.Warn("failed to record undo journal", zap.Error(err))
		} else {
			result.JournalID = id
		}
	}

	if err := u.files.WriteFile(path, updated); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Changed = true
	log.Info("file documented",
		zap.Int("generated", len(result.Generated)),
		zap.Int("positional", stats.Positional),
		zap.Int("global", stats.Global))

	return result, nil
}

func (u *GenerateUseCase) documentMethod(
	ctx context.Context,
	unit domain.MethodUnit,
	lang methods.Language,
	delims domain.Delimiters,
	extractor *doccomment.Extractor,
	builder *patcher.Builder,
	result *FileResult,
) {
	if unit.HasExistingDocComment {
		result.Skipped = append(result.Skipped, SkippedMethod{Name: unit.Name, Reason: "already has a doc comment"})
		return
	}

	if u.opts.Guided && u.confirmer != nil {
		ok, err := u.confirmer.Confirm(unit.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: confirmation failed: %v", unit.Name, err))
			return
		}
		if !ok {
			result.Skipped = append(result.Skipped, SkippedMethod{Name: unit.Name, Reason: "declined"})
			return
		}
	}

	if u.opts.TokenLimit > 0 && u.tokenizer != nil {
		if tokens := u.tokenizer.CountTokens(unit.SourceText); tokens > u.opts.TokenLimit {
			reason := fmt.Sprintf("too many tokens (%d > %d)", tokens, u.opts.TokenLimit)
			result.Skipped = append(result.Skipped, SkippedMethod{Name: unit.Name, Reason: reason})
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s, use a larger model", unit.Name, reason))
			return
		}
	}

	req := domain.GenerationRequest{
		Language:   lang.Name,
		Code:       unit.SourceText,
		Inline:     u.opts.Inline,
		Hint:       lang.Hint,
		Delimiters: delims,
	}
	raw, err := u.backend.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		u.logger.Warn("model invocation failed", zap.String("method", unit.Name), zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", unit.Name, err))
		return
	}
	if u.rawHook != nil {
		u.rawHook(unit.Name, raw)
	}

	normalized := u.normalizer.Normalize(raw, lang.Name)
	if strings.TrimSpace(normalized.Text) == "" {
		u.logger.Warn("empty model response", zap.String("method", unit.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("%s: empty model response", unit.Name))
		return
	}
	extraction := extractor.Extract(normalized.Text)
	if extraction.IsWarning() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: output is not a standard doc comment (%s)", unit.Name, extraction.Kind))
	}

	builder.Add(unit, extraction.Comment)
	result.Generated = append(result.Generated, unit.Name)
}

func (u *GenerateUseCase) checkClean(path string, result *FileResult) error {
	if !u.opts.RequireCleanGit || u.vcs == nil {
		return nil
	}
	dirty, err := u.vcs.HasUnstagedChanges(path)
	if err != nil {
		u.logger.Debug("git status unavailable", zap.String("path", path), zap.Error(err))
		result.Warnings = append(result.Warnings, "could not check git status: "+err.Error())
		return nil
	}
	if dirty {
		return fmt.Errorf("%s: %w", path, domain.ErrDirtyWorkingTree)
	}
	return nil
}

// GenerateDir documents every file walker finds under root, one after another.
// A failing file is reported in its result and does not stop the others.
func (u *GenerateUseCase) GenerateDir(ctx context.Context, root string, walker port.FileWalker) ([]*FileResult, error) {
	files, err := walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	results := make([]*FileResult, 0, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if u.fileStart != nil {
			u.fileStart(file.Path, i, len(files))
		}
		result, err := u.Generate(ctx, file.Path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return append(results, result), err
			}
			result.Errors = append(result.Errors, err.Error())
		}
		results = append(results, result)
	}
	return results, nil
}
