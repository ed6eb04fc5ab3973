package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finpulse/internal/domain"
)

// Gemini implements Client against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed client with an explicit API key.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// MapColumns asks the model for a header mapping using one sample row.
func (g *Gemini) MapColumns(ctx context.Context, columns []string, sampleRow map[string]string) (*ColumnMapping, error) {
	colsJSON, _ := json.Marshal(columns)
	rowJSON, _ := json.Marshal(sampleRow)

	prompt := "Map the table columns below to standard keys: \"date\", \"description\", \"amount\", \"credit\", \"debit\".\n" +
		"Use the exact column names as values. Omit keys you cannot map.\n" +
		"Return JSON: { \"date\": \"col_name\", \"description\": \"col_name\", \"amount\": \"col_name\", \"credit\": \"col_name\", \"debit\": \"col_name\" }\n\n" +
		fmt.Sprintf("Columns: %s\nSample row: %s\n", colsJSON, rowJSON)

	var mapping ColumnMapping
	if err := g.generateJSON(ctx, []*genai.Part{{Text: prompt}}, 0, &mapping); err != nil {
		return nil, fmt.Errorf("MapColumns: %w", err)
	}
	return &mapping, nil
}

// ExtractFromText pulls transactions out of free-form document text.
func (g *Gemini) ExtractFromText(ctx context.Context, text string) ([]ExtractedTransaction, error) {
	prompt := "Extract financial transactions from the text below.\n" +
		"Ignore headers, footers, and page numbers.\n\n" +
		"Return STRICT JSON only: an object with a list \"transactions\".\n" +
		"Each transaction must have:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
		"- \"description\": string\n" +
		"- \"amount\": number (negative for expenses, positive for deposits)\n" +
		"- \"category\": string, guessed from the description, one of: " + categoriesJSON() + "\n\n" +
		"JSON format: { \"transactions\": [ ... ] }\n\n" +
		"TEXT:\n" + text

	return g.extractTransactions(ctx, []*genai.Part{{Text: prompt}})
}

// ExtractFromImage pulls the transaction out of a single receipt image.
func (g *Gemini) ExtractFromImage(ctx context.Context, data []byte, mimeType string) ([]ExtractedTransaction, error) {
	prompt := "You are a receipt scanner. Extract the transaction details from this image.\n" +
		"Return STRICT JSON only: an object with a list \"transactions\" containing one item.\n" +
		"The item must have:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
		"- \"description\": the merchant name\n" +
		"- \"amount\": number (negative for expenses)\n" +
		"- \"category\": string, guessed from the merchant, one of: " + categoriesJSON() + "\n\n" +
		"JSON format: { \"transactions\": [ ... ] }\n"

	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
	}
	return g.extractTransactions(ctx, parts)
}

func (g *Gemini) extractTransactions(ctx context.Context, parts []*genai.Part) ([]ExtractedTransaction, error) {
	var out struct {
		Transactions []ExtractedTransaction `json:"transactions"`
	}
	if err := g.generateJSON(ctx, parts, 0, &out); err != nil {
		return nil, fmt.Errorf("extractTransactions: %w", err)
	}
	return out.Transactions, nil
}

// CategorizeBatch maps the whole batch of descriptions in one call.
func (g *Gemini) CategorizeBatch(ctx context.Context, descriptions []string) (map[string]string, error) {
	descJSON, _ := json.Marshal(descriptions)

	prompt := "You are an accountant. Map each transaction description below to exactly one category from this list:\n" +
		categoriesJSON() + "\n\n" +
		"Return JSON: { \"mappings\": [ { \"description\": \"text\", \"category\": \"cat\" } ] }\n\n" +
		"Descriptions: " + string(descJSON)

	var out struct {
		Mappings []CategoryMapping `json:"mappings"`
	}
	if err := g.generateJSON(ctx, []*genai.Part{{Text: prompt}}, 0, &out); err != nil {
		return nil, fmt.Errorf("CategorizeBatch: %w", err)
	}

	result := make(map[string]string, len(out.Mappings))
	for _, m := range out.Mappings {
		result[m.Description] = m.Category
	}
	return result, nil
}

// GenerateInsight produces the CFO-style narrative for a health report.
func (g *Gemini) GenerateInsight(ctx context.Context, req InsightRequest) (*Insight, error) {
	prompt := fmt.Sprintf(
		"Role: Senior CFO (%s). Data: Revenue $%.2f, Runway %.1f months. Monthly trend: %s.\n"+
			"Task: 1. Analyze the trend. 2. Give 3 concrete actions. 3. Risk level (High/Medium/Low).\n"+
			"Language: %s.\n"+
			"Return JSON: { \"summary\": \"...\", \"actions\": [\"...\"], \"risk_level\": \"...\" }",
		req.Industry, req.TotalRevenue, req.RunwayMonths, req.TrendJSON, req.Language,
	)

	var insight Insight
	if err := g.generateJSON(ctx, []*genai.Part{{Text: prompt}}, 0.3, &insight); err != nil {
		return nil, fmt.Errorf("GenerateInsight: %w", err)
	}
	return &insight, nil
}

// generateJSON runs one generation round trip and unmarshals the cleaned
// response into out.
func (g *Gemini) generateJSON(ctx context.Context, parts []*genai.Part, temperature float32, out interface{}) error {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return fmt.Errorf("empty response from model")
	}

	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("unmarshal model JSON: %w", err)
	}
	return nil
}

func categoriesJSON() string {
	b, _ := json.Marshal(domain.Categories)
	return string(b)
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instructions.
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

	// Keep only the outermost JSON value if junk remains around it.
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end > start {
		s = strings.TrimSpace(s[start : end+1])
	}
	return s
}
