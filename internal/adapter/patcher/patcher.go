package patcher

import (
	"sort"
	"strings"

	"docgen/internal/adapter/doccomment"
	"docgen/internal/domain"
)

// Stats summarizes how a patch set was applied.
type Stats struct {
	Positional int
	Global     int
	Missed     []string
}

// Applied returns the number of entries that changed the content.
func (s Stats) Applied() int {
	return s.Positional + s.Global
}

// Builder accumulates patch entries for one file in method discovery order.
type Builder struct {
	set *domain.PatchSet
}

// NewBuilder creates a builder with an empty patch set.
func NewBuilder() *Builder {
	return &Builder{set: domain.NewPatchSet()}
}

// Add merges comment onto the method and records the entry.
func (b *Builder) Add(unit domain.MethodUnit, comment string) domain.PatchEntry {
	entry := domain.PatchEntry{
		ID:       unit.ID,
		Original: unit.SourceText,
		Merged:   doccomment.Merge(comment, unit.SourceText),
	}
	if unit.HasSpan() {
		entry.Span = &domain.Span{Start: unit.Start, End: unit.End}
	}
	b.set.Add(entry)
	return entry
}

// PatchSet returns the accumulated set.
func (b *Builder) PatchSet() *domain.PatchSet {
	return b.set
}

// Apply rewrites content with every entry of set.
//
// Entries whose span still points at their original bytes are spliced in place,
// last offset first, so textually identical methods stay distinct. The rest
// replace every literal occurrence of their original text, in insertion order.
func Apply(content string, set *domain.PatchSet) (string, Stats) {
	var stats Stats
	if set.Len() == 0 {
		return content, stats
	}

	var positional, global []domain.PatchEntry
	for _, e := range set.Entries() {
		if spanMatches(content, e) {
			positional = append(positional, e)
		} else {
			global = append(global, e)
		}
	}
	positional = dropOverlapping(positional, &global)

	sort.SliceStable(positional, func(i, j int) bool {
		return positional[i].Span.Start > positional[j].Span.Start
	})
	for _, e := range positional {
		content = content[:e.Span.Start] + e.Merged + content[e.Span.End:]
		stats.Positional++
	}

	for _, e := range global {
		if e.Original == "" || !strings.Contains(content, e.Original) {
			stats.Missed = append(stats.Missed, e.ID)
			continue
		}
		content = strings.ReplaceAll(content, e.Original, e.Merged)
		stats.Global++
	}

	return content, stats
}

func spanMatches(content string, e domain.PatchEntry) bool {
	if e.Span == nil {
		return false
	}
	s := *e.Span
	if s.Start < 0 || s.End > len(content) || s.Start > s.End {
		return false
	}
	return content[s.Start:s.End] == e.Original
}

// dropOverlapping moves entries whose spans overlap an earlier entry over to
// the global list; nested methods cannot both be spliced by offset.
func dropOverlapping(entries []domain.PatchEntry, global *[]domain.PatchEntry) []domain.PatchEntry {
	kept := entries[:0]
	for _, e := range entries {
		overlaps := false
		for _, k := range kept {
			if e.Span.Start < k.Span.End && k.Span.Start < e.Span.End {
				overlaps = true
				break
			}
		}
		if overlaps {
			*global = append(*global, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
