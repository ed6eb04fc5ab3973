// Package analysis aggregates canonical transactions into cash-flow health
// metrics, a bounded health score, and rule-based compliance alerts. All
// arithmetic here is pure and deterministic; anything AI-derived lives
// elsewhere.
package analysis

import (
	"math"

	"finpulse/internal/domain"
)

// RunwayNoBurn is the sentinel runway reported when there are no expenses
// at all: no measurable burn, effectively infinite runway.
const RunwayNoBurn = 999

// Metrics is the derived, never-persisted output of the engine. All fields
// are always present; zero values and an empty trend map denote inputs
// that could not support a metric.
type Metrics struct {
	TotalRevenue     float64            `json:"total_revenue"`
	TotalExpenses    float64            `json:"total_expenses"`
	NetIncome        float64            `json:"net_income"`
	BurnRate         float64            `json:"burn_rate"`
	RunwayMonths     float64            `json:"runway_months"`
	NetMarginPercent float64            `json:"net_margin_percent"`
	MonthlyTrend     map[string]float64 `json:"monthly_trend"`
	ComplianceAlerts []string           `json:"compliance_alerts,omitempty"`
}

// EmptyMetrics is the defined terminal case for an empty transaction list.
func EmptyMetrics() Metrics {
	return Metrics{MonthlyTrend: map[string]float64{}}
}

// Analyze computes the full metric set from a canonical transaction list.
// Callers guarantee every transaction carries a parsed date; unparseable
// rows were dropped upstream.
//
// Runway uses net income of the observed window as the cash proxy. That
// conflates flow with a balance and is a deliberate, product-level
// approximation carried over from the original design; do not "fix" it
// here without a product decision.
func Analyze(txs []domain.Transaction) Metrics {
	if len(txs) == 0 {
		return EmptyMetrics()
	}

	var totalRevenue, totalExpenses float64
	monthly := make(map[string]float64)

	for _, tx := range txs {
		if tx.Amount > 0 {
			totalRevenue += tx.Amount
		} else if tx.Amount < 0 {
			totalExpenses += tx.Amount
		}
		monthly[tx.Date.Format("2006-01")] += tx.Amount
	}

	netIncome := totalRevenue + totalExpenses

	trend := make(map[string]float64, len(monthly))
	for month, sum := range monthly {
		trend[month] = round2(sum)
	}

	numMonths := len(monthly)
	if numMonths < 1 {
		numMonths = 1
	}

	// Gross burn: average monthly spend regardless of income, reflecting
	// worst-case survival if revenue stops.
	burnRate := round2(math.Abs(totalExpenses) / float64(numMonths))

	runway := float64(RunwayNoBurn)
	if burnRate > 0 {
		runway = round1(netIncome / burnRate)
	}

	margin := 0.0
	if totalRevenue > 0 {
		margin = round1(netIncome / totalRevenue * 100)
	}

	return Metrics{
		TotalRevenue:     round2(totalRevenue),
		TotalExpenses:    round2(totalExpenses),
		NetIncome:        round2(netIncome),
		BurnRate:         burnRate,
		RunwayMonths:     runway,
		NetMarginPercent: margin,
		MonthlyTrend:     trend,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
