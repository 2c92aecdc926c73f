package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"docgen/config"
	"docgen/internal/adapter/doccomment"
	"docgen/internal/adapter/response"
	"docgen/internal/adapter/store"
	"docgen/internal/domain"
)

// Replays every cached model response through normalization and extraction
// and reports how often each extraction kind occurs per model.
func main() {
	dir := flag.String("dir", ".", "Project directory holding .docgen")
	lang := flag.String("lang", "java", "Language assumed for untagged responses")
	show := flag.Int("show", 3, "Number of non-clean samples to print per model")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	dbPath := config.StateDBPath(*dir)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "No state found at %s - run 'docgen generate' first\n", dbPath)
		os.Exit(1)
	}
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	normalizer := response.NewNormalizer()
	extractor := doccomment.NewExtractor(cfg.Generate.Delimiters)

	type modelStats struct {
		kinds   map[domain.ExtractionKind]int
		total   int
		samples []string
	}
	byModel := make(map[string]*modelStats)

	err = st.ForEachResponse(func(key string, resp domain.CachedResponse) error {
		ms := byModel[resp.Model]
		if ms == nil {
			ms = &modelStats{kinds: make(map[domain.ExtractionKind]int)}
			byModel[resp.Model] = ms
		}
		normalized := normalizer.Normalize(resp.ToRaw(), *lang)
		extraction := extractor.Extract(normalized.Text)
		ms.kinds[extraction.Kind]++
		ms.total++
		if extraction.IsWarning() && len(ms.samples) < *show {
			ms.samples = append(ms.samples, fmt.Sprintf("[%s] %s", extraction.Kind, preview(normalized.Text)))
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading responses: %v\n", err)
		os.Exit(1)
	}

	if len(byModel) == 0 {
		fmt.Println("No cached responses")
		return
	}

	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Strings(models)

	fmt.Println("EXTRACTION BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	overall, clean := 0, 0
	for _, m := range models {
		ms := byModel[m]
		overall += ms.total
		clean += ms.kinds[domain.CleanExtraction]

		fmt.Printf("%s (%d responses)\n", m, ms.total)
		for _, k := range []domain.ExtractionKind{domain.CleanExtraction, domain.FallbackPartial, domain.FallbackPassthrough} {
			fmt.Printf("  %-22s %5d  %5.1f%%\n", k, ms.kinds[k], percent(ms.kinds[k], ms.total))
		}
		for _, s := range ms.samples {
			fmt.Printf("    %s\n", s)
		}
		fmt.Println()
	}

	rate := percent(clean, overall)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Clean extraction rate: %.1f%% of %d\n", rate, overall)
	switch {
	case rate > 90:
		fmt.Println("Status: GOOD - models follow the comment format")
	case rate > 60:
		fmt.Println("Status: OK - review the fallback samples")
	default:
		fmt.Println("Status: POOR - try the comment-only prompt or another model")
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 100 {
		return text[:100] + "..."
	}
	return text
}
