// Package triage maps a patient's age and free-text disease history to a
// coarse risk level and the matching triage color shown on the scan view.
package triage

import "strings"

type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Code is the visual urgency marker derived from the risk level.
type Code string

const (
	CodeRed    Code = "RED"
	CodeYellow Code = "YELLOW"
	CodeGreen  Code = "GREEN"
)

type Result struct {
	Risk RiskLevel
	Code Code
}

// keywords that force a HIGH classification regardless of age. Matched
// case-insensitively as substrings of the free-text disease field.
var highRiskKeywords = []string{"heart", "diabetes"}

const (
	highRiskAge   = 60
	mediumRiskAge = 40
)

// Assess classifies a patient. Precedence is fixed: the high-risk rule is
// evaluated before the age bands, so disease keywords override a low age.
// An empty disease string never matches a keyword.
func Assess(age int, diseases string) Result {
	if age >= highRiskAge || containsKeyword(diseases) {
		return Result{Risk: RiskHigh, Code: CodeRed}
	}
	if age >= mediumRiskAge {
		return Result{Risk: RiskMedium, Code: CodeYellow}
	}
	return Result{Risk: RiskLow, Code: CodeGreen}
}

func containsKeyword(diseases string) bool {
	if diseases == "" {
		return false
	}
	lowered := strings.ToLower(diseases)
	for _, kw := range highRiskKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
