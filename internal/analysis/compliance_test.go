package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finpulse/internal/domain"
)

func TestComplianceAlerts_QuarterEndMonth(t *testing.T) {
	alerts := ComplianceAlerts([]domain.Transaction{
		tx("2024-11-02", 100),
		tx("2024-12-15", -50),
	})

	assert.Equal(t, []string{TaxFilingAlert}, alerts)
}

func TestComplianceAlerts_MidQuarterMonth(t *testing.T) {
	alerts := ComplianceAlerts([]domain.Transaction{
		tx("2024-07-04", 100),
	})

	assert.Empty(t, alerts)
}

func TestComplianceAlerts_LatestDateDrivesTheRule(t *testing.T) {
	// A December transaction earlier in the list must not trigger the
	// alert when a later date lands mid quarter.
	alerts := ComplianceAlerts([]domain.Transaction{
		tx("2023-12-30", 100),
		tx("2024-01-10", 100),
	})

	assert.Empty(t, alerts)
}

func TestComplianceAlerts_Empty(t *testing.T) {
	alerts := ComplianceAlerts(nil)

	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
