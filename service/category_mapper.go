package service

import (
	"context"
	"strings"
	"sync"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/logger"
)

// LabelSuggester is the advisory embedding-store collaborator: it returns
// nearest-neighbor category matches above a similarity threshold.
type LabelSuggester interface {
	SuggestCategories(ctx context.Context, labels []string) (map[string]dto.CategorySuggestion, error)
}

// CategoryMapper maps raw line-item labels to canonical categories. Tier one
// is substring synonym matching against an immutable configured table; tier
// two is an optional embedding lookup whose results never override a synonym
// hit.
type CategoryMapper struct {
	synonyms  *config.Synonyms
	suggester LabelSuggester
	batchSize int
}

func NewCategoryMapper(synonyms *config.Synonyms, suggester LabelSuggester) *CategoryMapper {
	return &CategoryMapper{
		synonyms:  synonyms,
		suggester: suggester,
		batchSize: 16,
	}
}

// MapLabels classifies every label. Returns suggestions keyed by lowercased
// label and the list of labels neither tier could place.
func (m *CategoryMapper) MapLabels(ctx context.Context, labels []string) (map[string]dto.CategorySuggestion, []string) {
	suggestions := make(map[string]dto.CategorySuggestion, len(labels))
	var unmatched []string

	for _, label := range labels {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" {
			continue
		}
		if _, seen := suggestions[key]; seen {
			continue
		}
		if category, ok := m.matchSynonym(key); ok {
			suggestions[key] = dto.CategorySuggestion{Category: category, Source: dto.SourceSynonym}
		} else {
			unmatched = append(unmatched, key)
		}
	}

	unmapped := unmatched
	if m.suggester != nil && len(unmatched) > 0 {
		embedded := m.lookupEmbeddings(ctx, unmatched)
		unmapped = unmapped[:0]
		for _, key := range unmatched {
			if s, ok := embedded[key]; ok {
				suggestions[key] = s
			} else {
				unmapped = append(unmapped, key)
			}
		}
	}
	return suggestions, unmapped
}

// matchSynonym tries category-name containment first, then configured
// synonyms, in the table's order. First match wins.
func (m *CategoryMapper) matchSynonym(label string) (string, bool) {
	for _, entry := range m.synonyms.Categories {
		if strings.Contains(label, strings.ToLower(entry.Name)) {
			return entry.Name, true
		}
	}
	for _, entry := range m.synonyms.Categories {
		for _, syn := range entry.Synonyms {
			if strings.Contains(label, strings.ToLower(syn)) {
				return entry.Name, true
			}
		}
	}
	return "", false
}

// lookupEmbeddings fans batches out concurrently and joins the results.
// Ordering does not matter: every lookup is keyed by its own label. A failed
// batch degrades to "unmapped" rather than failing the document.
func (m *CategoryMapper) lookupEmbeddings(ctx context.Context, labels []string) map[string]dto.CategorySuggestion {
	log := logger.FromContext(ctx)

	var mu sync.Mutex
	var wg sync.WaitGroup
	merged := make(map[string]dto.CategorySuggestion)

	for start := 0; start < len(labels); start += m.batchSize {
		end := start + m.batchSize
		if end > len(labels) {
			end = len(labels)
		}

		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()

			result, err := m.suggester.SuggestCategories(ctx, batch)
			if err != nil {
				log.Warn().Err(err).Int("labels", len(batch)).Msg("embedding lookup failed, labels stay unmapped")
				return
			}
			mu.Lock()
			for key, suggestion := range result {
				merged[key] = suggestion
			}
			mu.Unlock()
		}(labels[start:end])
	}

	wg.Wait()
	return merged
}
