package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"finpulse/internal/domain"
	"finpulse/internal/llm"
)

// InsightGenerator is the narrative-generation seam of the report flow.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, req llm.InsightRequest) (*llm.Insight, error)
}

// Report is the full health report response shape. It is never partial:
// when narrative generation is unavailable, AIAnalysis carries a clearly
// marked fallback instead of being omitted.
type Report struct {
	Score      int         `json:"score"`
	Metrics    Metrics     `json:"metrics"`
	AIAnalysis llm.Insight `json:"ai_analysis"`
}

// Reporter assembles metrics, score, compliance alerts, and the narrative
// into one report.
type Reporter struct {
	llm InsightGenerator
	log zerolog.Logger
}

// NewReporter creates a report assembler. gen may be a disabled client.
func NewReporter(gen InsightGenerator, log zerolog.Logger) *Reporter {
	return &Reporter{llm: gen, log: log}
}

// Generate computes the deterministic sections synchronously, then makes a
// single best-effort narrative call.
func (r *Reporter) Generate(ctx context.Context, industry, language string, txs []domain.Transaction) *Report {
	metrics := Analyze(txs)
	metrics.ComplianceAlerts = ComplianceAlerts(txs)
	score := HealthScore(metrics)

	return &Report{
		Score:      score,
		Metrics:    metrics,
		AIAnalysis: r.insight(ctx, industry, language, metrics),
	}
}

func (r *Reporter) insight(ctx context.Context, industry, language string, metrics Metrics) llm.Insight {
	trendJSON, err := json.Marshal(metrics.MonthlyTrend)
	if err != nil {
		trendJSON = []byte("{}")
	}

	if r.llm != nil {
		insight, err := r.llm.GenerateInsight(ctx, llm.InsightRequest{
			Industry:     industry,
			Language:     language,
			TotalRevenue: metrics.TotalRevenue,
			RunwayMonths: metrics.RunwayMonths,
			TrendJSON:    string(trendJSON),
		})
		if err == nil && insight != nil {
			return *insight
		}
		if errors.Is(err, llm.ErrUnavailable) {
			r.log.Debug().Msg("Narrative generation skipped: capability unavailable")
		} else {
			r.log.Warn().Err(err).Msg("Narrative generation failed, using fallback")
		}
		return fallbackInsight(err)
	}
	return fallbackInsight(llm.ErrUnavailable)
}

func fallbackInsight(reason error) llm.Insight {
	return llm.Insight{
		Summary:   fmt.Sprintf("AI analysis unavailable: %v", reason),
		Actions:   []string{"Check logs"},
		RiskLevel: "Unknown",
	}
}
