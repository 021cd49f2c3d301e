package config

import (
	"regexp"
	"strings"
)

// SensitivePattern is a pattern that suggests a credential was committed to
// a config file.
type SensitivePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

var sensitivePatterns = []SensitivePattern{
	{Name: "SLV environment secret key", Pattern: regexp.MustCompile(`SLV_ESK_[A-Za-z0-9_-]{16,}`)},
	{Name: "GitHub token", Pattern: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36,}`)},
	{Name: "Secret assignment", Pattern: regexp.MustCompile(`(?i)(secret|password|token)\s*=\s*['"][^'"]{8,}['"]`)},
}

// SensitiveDataFinding is one suspicious line.
type SensitiveDataFinding struct {
	PatternName string
	Line        int
}

// DetectSensitiveData scans config content for values that look like
// credentials. Line numbers are 1-based.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		for _, p := range sensitivePatterns {
			if p.Pattern.MatchString(line) {
				findings = append(findings, SensitiveDataFinding{PatternName: p.Name, Line: i + 1})
				break
			}
		}
	}
	return findings
}
