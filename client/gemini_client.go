package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

// GeminiClient is the external structured-extraction collaborator and the
// label-embedding store behind the category mapper's second tier. Both are
// advisory: a failure here degrades the caller to a lower-trust strategy.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	synonyms       *config.Synonyms
	similarity     float64

	corpusOnce sync.Once
	corpus     []corpusEntry
	corpusErr  error
}

type corpusEntry struct {
	label    string
	category string
	vector   []float32
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, syn *config.Synonyms, pol config.Policy) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{
		client:         c,
		model:          cfg.GeminiModel,
		embeddingModel: cfg.EmbeddingModel,
		synonyms:       syn,
		similarity:     pol.EmbeddingSimilarity,
	}, nil
}

const extractionPrompt = "You are a financial statement parser for property P&L statements.\n\n" +
	"Task:\n" +
	"- Parse ALL annual line items in the attached statement text.\n" +
	"- Ignore month-by-month breakdown columns; use only annual/YTD figures.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n" +
	"Output a single JSON object with these fields:\n" +
	"- \"income\": array of {\"label\": string, \"amount\": number}\n" +
	"- \"expense\": array of {\"label\": string, \"amount\": number}\n" +
	"- \"other_expense\": array of {\"label\": string, \"amount\": number}\n" +
	"- \"net_income\": number or null\n\n" +
	"Rules:\n" +
	"- Amounts in parentheses are negative.\n" +
	"- Do NOT include Total, Subtotal or Net rows as line items.\n" +
	"- Return ONLY valid raw JSON.\n" +
	"- Do NOT wrap the response in code fences.\n"

// ExtractStatement sends document text to the model and schema-validates the
// returned payload before anything reaches the merger. The model is
// untrusted; any shape violation is an error.
func (g *GeminiClient) ExtractStatement(ctx context.Context, text string) (*dto.Statement, int, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{Text: "Statement text:\n\n" + text},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("generate content: %w", err)
	}
	rawText := resp.Text()
	if rawText == "" {
		return nil, 0, fmt.Errorf("empty response from model")
	}

	var parsed map[string]interface{}
	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, 0, fmt.Errorf("unmarshal model JSON: %w", err)
	}
	return statementFromModelOutput(parsed)
}

// statementFromModelOutput converts the untyped model payload into a
// statement, rejecting anything that does not match the fixed schema.
func statementFromModelOutput(raw map[string]interface{}) (*dto.Statement, int, error) {
	stmt := dto.NewStatement()
	rows := 0

	for _, section := range []struct {
		key  string
		kind dto.SectionKind
	}{
		{"income", dto.SectionIncome},
		{"expense", dto.SectionExpense},
		{"other_expense", dto.SectionOtherExpense},
	} {
		itemsAny, ok := raw[section.key]
		if !ok || itemsAny == nil {
			continue
		}
		items, ok := itemsAny.([]interface{})
		if !ok {
			return nil, 0, fmt.Errorf("field %q is %T, want array", section.key, itemsAny)
		}
		for i, itemAny := range items {
			obj, ok := itemAny.(map[string]interface{})
			if !ok {
				return nil, 0, fmt.Errorf("%s[%d] is %T, want object", section.key, i, itemAny)
			}
			label, err := getStringField(obj, "label")
			if err != nil {
				return nil, 0, fmt.Errorf("%s[%d]: %w", section.key, i, err)
			}
			amount, err := getNumberField(obj, "amount")
			if err != nil {
				return nil, 0, fmt.Errorf("%s[%d]: %w", section.key, i, err)
			}
			stmt.Section(section.kind).Add(label, amount)
			rows++
		}
	}

	if netAny, ok := raw["net_income"]; ok && netAny != nil {
		net, ok := netAny.(float64)
		if !ok {
			return nil, 0, fmt.Errorf("net_income is %T, want number", netAny)
		}
		stmt.NetIncome = decimal.NewFromFloat(net)
		stmt.NetIncomeExplicit = true
	}
	return stmt, rows, nil
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

func getNumberField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return decimal.NewFromFloat(f), nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// SuggestCategories embeds the given labels and looks up the nearest
// neighbor in the synonym-derived labeled corpus. Only matches at or above
// the similarity floor are returned; results are advisory.
func (g *GeminiClient) SuggestCategories(ctx context.Context, labels []string) (map[string]dto.CategorySuggestion, error) {
	if len(labels) == 0 {
		return map[string]dto.CategorySuggestion{}, nil
	}

	g.corpusOnce.Do(func() { g.corpusErr = g.buildCorpus(ctx) })
	if g.corpusErr != nil {
		return nil, g.corpusErr
	}

	vectors, err := g.embed(ctx, labels)
	if err != nil {
		return nil, err
	}

	out := make(map[string]dto.CategorySuggestion, len(labels))
	for i, label := range labels {
		bestScore := 0.0
		bestCategory := ""
		for _, entry := range g.corpus {
			score := cosineSimilarity(vectors[i], entry.vector)
			if score > bestScore {
				bestScore = score
				bestCategory = entry.category
			}
		}
		if bestCategory != "" && bestScore >= g.similarity {
			score := bestScore
			out[strings.ToLower(label)] = dto.CategorySuggestion{
				Category: bestCategory,
				Source:   dto.SourceEmbedding,
				Score:    &score,
			}
		}
	}
	return out, nil
}

// buildCorpus embeds every configured category name and synonym once.
func (g *GeminiClient) buildCorpus(ctx context.Context) error {
	var texts []string
	var categories []string
	for _, entry := range g.synonyms.Categories {
		texts = append(texts, entry.Name)
		categories = append(categories, entry.Name)
		for _, syn := range entry.Synonyms {
			texts = append(texts, syn)
			categories = append(categories, entry.Name)
		}
	}

	vectors, err := g.embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed label corpus: %w", err)
	}
	g.corpus = make([]corpusEntry, len(texts))
	for i := range texts {
		g.corpus[i] = corpusEntry{label: texts[i], category: categories[i], vector: vectors[i]}
	}
	return nil
}

func (g *GeminiClient) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: t}}}
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
