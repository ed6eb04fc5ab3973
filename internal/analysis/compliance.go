package analysis

import (
	"time"

	"finpulse/internal/domain"
)

// TaxFilingAlert is the fixed advisory emitted in quarter-end months.
const TaxFilingAlert = "Quarterly Tax Filing due soon."

var quarterEndMonths = map[time.Month]bool{
	time.March:     true,
	time.June:      true,
	time.September: true,
	time.December:  true,
}

// ComplianceAlerts derives rule-based alerts from the latest transaction
// date's calendar month. An empty transaction list yields no alerts.
func ComplianceAlerts(txs []domain.Transaction) []string {
	alerts := []string{}
	if len(txs) == 0 {
		return alerts
	}

	latest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}

	if quarterEndMonths[latest.Month()] {
		alerts = append(alerts, TaxFilingAlert)
	}
	return alerts
}
