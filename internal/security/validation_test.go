package security_test

import (
	"testing"

	"ethicalpulse/dashboard/internal/model"
	"ethicalpulse/dashboard/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestValidateVulnerabilityInputRequiresName ensures a nameless vulnerability is rejected
func TestValidateVulnerabilityInputRequiresName(t *testing.T) {
	err := security.ValidateVulnerabilityInput(model.VulnerabilityInput{Name: "  ", Severity: model.SeverityLow})
	require.Error(t, err)
	assert.True(t, security.IsValidation(err))

	var fields security.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "name", fields[0].Field)
}

func TestValidateVulnerabilityInput(t *testing.T) {
	testCases := []struct {
		name   string
		input  model.VulnerabilityInput
		fields []string
	}{
		{
			name:  "valid",
			input: model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityMedium, CVEID: strPtr("CVE-2025-1234")},
		},
		{
			name:   "bad severity",
			input:  model.VulnerabilityInput{Name: "XSS", Severity: "severe"},
			fields: []string{"severity"},
		},
		{
			name:   "bad url and cve",
			input:  model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityLow, TargetURL: strPtr("example.com"), CVEID: strPtr("1234")},
			fields: []string{"target_url", "cve_id"},
		},
		{
			name:   "unknown status",
			input:  model.VulnerabilityInput{Name: "XSS", Severity: model.SeverityLow, Status: "triaged"},
			fields: []string{"status"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := security.ValidateVulnerabilityInput(tc.input)
			if len(tc.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var fields security.ValidationErrors
			require.ErrorAs(t, err, &fields)
			var got []string
			for _, f := range fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestValidateScanInput(t *testing.T) {
	assert.NoError(t, security.ValidateScanInput(model.ScanInput{
		Name: "Nightly", TargetURL: "https://example.com", ScanType: "Full Scan",
	}))
	err := security.ValidateScanInput(model.ScanInput{Name: "Nightly", TargetURL: "ftp://example.com"})
	var fields security.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 2)
}

func TestValidateProjectInput(t *testing.T) {
	bad := model.TargetType("mainframe")
	err := security.ValidateProjectInput(model.ProjectInput{
		TargetDomain: strPtr("not a host"),
		TargetIP:     strPtr("999.1.1.1"),
		TargetType:   &bad,
	})
	var fields security.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 4)
	assert.Contains(t, err.Error(), "project name is required")

	assert.NoError(t, security.ValidateProjectInput(model.ProjectInput{
		Name: "Site Web Corporate", TargetDomain: strPtr("exemple.com"), TargetIP: strPtr("192.168.1.100"),
	}))
}

func TestValidateTargetAndID(t *testing.T) {
	assert.NoError(t, security.ValidateTarget("", ""))
	assert.NoError(t, security.ValidateTarget("api.example.com", "2001:db8::1"))
	assert.Error(t, security.ValidateTarget("exa mple", ""))
	assert.NoError(t, security.ValidateID("00000000-0000-0000-0000-000000000001"))
	assert.Error(t, security.ValidateID("demo-1"))
}

func TestValidateFindings(t *testing.T) {
	assert.NoError(t, security.ValidateFindings(model.FindingsSummary{Critical: 1}))
	assert.True(t, security.IsValidation(security.ValidateFindings(model.FindingsSummary{High: -2})))
}
