package gate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/steward/internal/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCheckDecisionTable(t *testing.T) {
	window := time.Hour

	tests := []struct {
		name   string
		report *models.ValidationReport
		want   Verdict
	}{
		{
			name:   "no report warns",
			report: nil,
			want:   Warn,
		},
		{
			name:   "fail blocks",
			report: &models.ValidationReport{Status: models.ReportFail, GeneratedAt: now.Add(-time.Minute)},
			want:   Block,
		},
		{
			name:   "fresh pass allows",
			report: &models.ValidationReport{Status: models.ReportPass, GeneratedAt: now.Add(-10 * time.Minute)},
			want:   Allow,
		},
		{
			name:   "stale pass warns",
			report: &models.ValidationReport{Status: models.ReportPass, GeneratedAt: now.Add(-2 * time.Hour)},
			want:   Warn,
		},
		{
			name:   "unknown status warns",
			report: &models.ValidationReport{Status: models.ReportUnknown, GeneratedAt: now},
			want:   Warn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Check(tt.report, window, now)
			assert.Equal(t, tt.want, d.Verdict)
			if d.Verdict != Allow {
				assert.NotEmpty(t, d.Reason, "non-allow decisions must carry a reason")
				assert.NotEmpty(t, d.Remediation, "non-allow decisions must carry a remediation hint")
			}
		})
	}
}

func TestCheckNoReportSuggestsValidation(t *testing.T) {
	d := Check(nil, time.Hour, now)
	assert.Equal(t, "run validation first", d.Remediation)
}

func TestOverrideRequiresReason(t *testing.T) {
	blocked := Decision{Verdict: Block, Reason: "validation failed"}

	_, err := Override(blocked, "alice", "", now)
	assert.Error(t, err)

	rec, err := Override(blocked, "alice", "hotfix for production outage", now)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Actor)
	assert.Equal(t, blocked, rec.Overridden)
	assert.Equal(t, now, rec.At)
}

func TestOverrideDefaultsActor(t *testing.T) {
	rec, err := Override(Decision{Verdict: Block}, "", "reason", now)
	require.NoError(t, err)
	assert.Equal(t, "user", rec.Actor)
}

func TestReportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.yaml")

	report := &models.ValidationReport{
		GeneratedAt: now,
		Status:      models.ReportPass,
		Checks: []models.CheckOutcome{
			{Name: "unit tests", Status: models.ReportPass},
			{Name: "lint", Status: models.ReportPass, Detail: "0 issues"},
		},
	}
	require.NoError(t, SaveReport(path, report))

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, models.ReportPass, loaded.Status)
	assert.True(t, loaded.GeneratedAt.Equal(now))
	assert.Len(t, loaded.Checks, 2)
}

func TestLoadReportMissingFile(t *testing.T) {
	report, err := LoadReport(filepath.Join(t.TempDir(), "validation.yaml"))
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestLoadReportDefaultsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.yaml")
	require.NoError(t, SaveReport(path, &models.ValidationReport{GeneratedAt: now}))

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, models.ReportUnknown, loaded.Status)
}
