package security

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"

	"ethicalpulse/dashboard/internal/model"
)

var (
	uuidRegex     = regexp.MustCompile(`^[a-fA-F0-9-]{36}$`)
	cveRegex      = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)
	hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
)

// FieldError describes a problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field problem found in one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

func ValidateID(id string) error {
	if !uuidRegex.MatchString(id) {
		return errors.New("invalid id")
	}
	return nil
}

func ValidateVulnerabilityInput(in model.VulnerabilityInput) error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "name is required")
	}
	if !in.Severity.Valid() {
		errs.add("severity", "severity must be one of critical, high, medium, low")
	}
	if in.Status != "" {
		if _, err := model.ParseVulnerabilityStatus(in.Status); err != nil {
			errs.add("status", "unknown status")
		}
	}
	if in.TargetURL != nil && *in.TargetURL != "" && !validURL(*in.TargetURL) {
		errs.add("target_url", "target_url must be an absolute http(s) URL")
	}
	if in.CVEID != nil && *in.CVEID != "" && !cveRegex.MatchString(*in.CVEID) {
		errs.add("cve_id", "cve_id must look like CVE-2024-12345")
	}
	return errs.orNil()
}

func ValidateVulnerabilityPatch(p model.VulnerabilityPatch) error {
	var errs ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.add("name", "name must not be empty")
	}
	if p.Severity != nil && !p.Severity.Valid() {
		errs.add("severity", "severity must be one of critical, high, medium, low")
	}
	if p.TargetURL != nil && *p.TargetURL != "" && !validURL(*p.TargetURL) {
		errs.add("target_url", "target_url must be an absolute http(s) URL")
	}
	if p.CVEID != nil && *p.CVEID != "" && !cveRegex.MatchString(*p.CVEID) {
		errs.add("cve_id", "cve_id must look like CVE-2024-12345")
	}
	return errs.orNil()
}

func ValidateScanInput(in model.ScanInput) error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "name is required")
	}
	if !validURL(in.TargetURL) {
		errs.add("target_url", "target_url must be an absolute http(s) URL")
	}
	if strings.TrimSpace(in.ScanType) == "" {
		errs.add("scan_type", "scan_type is required")
	}
	if in.Status != "" {
		if _, err := model.ParseScanStatus(in.Status); err != nil {
			errs.add("status", "unknown status")
		}
	}
	return errs.orNil()
}

func ValidateFindings(f model.FindingsSummary) error {
	if err := f.Validate(); err != nil {
		return ValidationErrors{{Field: "findings_summary", Message: err.Error()}}
	}
	return nil
}

func ValidateProjectInput(in model.ProjectInput) error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "project name is required")
	}
	if in.TargetDomain != nil && *in.TargetDomain != "" && !hostnameRegex.MatchString(*in.TargetDomain) {
		errs.add("target_domain", "target_domain must be a hostname")
	}
	if in.TargetIP != nil && *in.TargetIP != "" && net.ParseIP(*in.TargetIP) == nil {
		errs.add("target_ip", "target_ip must be an IPv4 or IPv6 address")
	}
	if in.TargetType != nil && !in.TargetType.Valid() {
		errs.add("target_type", "unknown target type")
	}
	return errs.orNil()
}

// ValidateTarget checks the optional terminal target parameters.
func ValidateTarget(domain, ip string) error {
	var errs ValidationErrors
	if domain != "" && !hostnameRegex.MatchString(domain) {
		errs.add("target_domain", "target_domain must be a hostname")
	}
	if ip != "" && net.ParseIP(ip) == nil {
		errs.add("target_ip", "target_ip must be an IPv4 or IPv6 address")
	}
	return errs.orNil()
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
