package domain

import (
	"math"
	"time"
)

// TargetKind identifies what kind of unit a check inspects.
type TargetKind string

const (
	TargetContainer   TargetKind = "container"
	TargetImage       TargetKind = "image"
	TargetDockerfile  TargetKind = "dockerfile"
	TargetComposeFile TargetKind = "composefile"
	TargetEnvFile     TargetKind = "envfile"
	TargetEndpoint    TargetKind = "endpoint"
)

// Target is one inspectable unit, resolved at run start and immutable for the
// duration of one run.
type Target struct {
	Kind TargetKind `json:"kind"`
	Name string     `json:"name"`
	Ref  string     `json:"ref"` // container name, image tag, file path, or URL
}

// Outcome of a single check.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	OutcomeSkip Outcome = "skip"
)

// CheckResult is the immutable outcome of one rule applied to one target.
// Credit carries fractional scoring: a passing check normally earns 1.0, a
// pass with a warning reason earns 0.5.
type CheckResult struct {
	RuleID   string            `json:"rule_id"`
	RuleName string            `json:"rule_name"`
	Target   Target            `json:"target"`
	Outcome  Outcome           `json:"outcome"`
	Credit   float64           `json:"credit"`
	Reason   string            `json:"reason,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// Pass builds a full-credit result.
func Pass(ruleID, ruleName string, target Target) CheckResult {
	return CheckResult{RuleID: ruleID, RuleName: ruleName, Target: target, Outcome: OutcomePass, Credit: 1}
}

// Warn builds a half-credit result: the check passed but with a caveat worth
// surfacing in the report.
func Warn(ruleID, ruleName string, target Target, reason string) CheckResult {
	return CheckResult{RuleID: ruleID, RuleName: ruleName, Target: target, Outcome: OutcomePass, Credit: 0.5, Reason: reason}
}

// PartialFail builds a failing result that still earns half credit, for rules
// whose deviation is only partly unjustified.
func PartialFail(ruleID, ruleName string, target Target, reason string) CheckResult {
	return CheckResult{RuleID: ruleID, RuleName: ruleName, Target: target, Outcome: OutcomeFail, Credit: 0.5, Reason: reason}
}

// Fail builds a zero-credit result.
func Fail(ruleID, ruleName string, target Target, reason string) CheckResult {
	return CheckResult{RuleID: ruleID, RuleName: ruleName, Target: target, Outcome: OutcomeFail, Reason: reason}
}

// WithDetail returns a copy of the result with one diagnostic key set.
func (r CheckResult) WithDetail(key, value string) CheckResult {
	details := make(map[string]string, len(r.Details)+1)
	for k, v := range r.Details {
		details[k] = v
	}
	details[key] = value
	r.Details = details
	return r
}

// Tier is the severity band a category score falls into.
type Tier string

const (
	TierHealthy  Tier = "healthy"
	TierDegraded Tier = "degraded"
	TierCritical Tier = "critical"
)

// Thresholds holds the score boundaries for a category's tiers.
type Thresholds struct {
	Healthy  float64 `json:"healthy"`
	Degraded float64 `json:"degraded"`
}

// DefaultThresholds is the 70/60 split used by most categories.
var DefaultThresholds = Thresholds{Healthy: 70, Degraded: 60}

// CapabilityThresholds is the stricter 80/60 split for the capabilities audit.
var CapabilityThresholds = Thresholds{Healthy: 80, Degraded: 60}

// TierFor classifies a score against the thresholds.
func (t Thresholds) TierFor(score float64) Tier {
	switch {
	case score >= t.Healthy:
		return TierHealthy
	case score >= t.Degraded:
		return TierDegraded
	default:
		return TierCritical
	}
}

// CategoryReport holds the ordered check results of one audit category.
type CategoryReport struct {
	Category   string        `json:"category"`
	Results    []CheckResult `json:"results"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Score      float64       `json:"score"`
	Tier       Tier          `json:"tier"`
	Thresholds Thresholds    `json:"thresholds"`
	CommitHash string        `json:"commit_hash,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// NewCategoryReport scores an ordered result sequence. Results must already be
// in deterministic target-then-rule order.
func NewCategoryReport(category string, thresholds Thresholds, results []CheckResult) CategoryReport {
	rep := CategoryReport{
		Category:   category,
		Results:    results,
		Thresholds: thresholds,
		Timestamp:  time.Now().UTC(),
	}
	var credit float64
	for _, r := range results {
		switch r.Outcome {
		case OutcomePass:
			rep.Passed++
		case OutcomeFail:
			rep.Failed++
		default:
			rep.Skipped++
		}
		credit += r.Credit
	}
	if len(results) > 0 {
		rep.Score = Round1(credit / float64(len(results)) * 100)
	}
	rep.Tier = thresholds.TierFor(rep.Score)
	return rep
}

// Healthy reports whether the category met its passing threshold.
func (r CategoryReport) Healthy() bool { return r.Tier == TierHealthy }

// ExitCode maps the category tier to a process exit code. Hard failures
// (zero targets, unreachable daemon) use ExitHardFailure instead.
func (r CategoryReport) ExitCode() int {
	switch r.Tier {
	case TierHealthy:
		return ExitOK
	case TierDegraded:
		return ExitDegraded
	default:
		return ExitCritical
	}
}

// Process exit codes. Degraded gets its own code so CI can distinguish
// "needs attention" from "broken".
const (
	ExitOK          = 0
	ExitCritical    = 1
	ExitDegraded    = 2
	ExitHardFailure = 3
)

// CategoryOutcome is a suite-level summary of one category run.
type CategoryOutcome struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Tier     Tier    `json:"tier"`
	Passed   bool    `json:"passed"`
	Err      string  `json:"error,omitempty"`
}

// SuiteReport aggregates all category outcomes into one verdict.
type SuiteReport struct {
	Categories  []CategoryOutcome `json:"categories"`
	GlobalScore float64           `json:"global_score"`
	Passed      bool              `json:"passed"`
	CommitHash  string            `json:"commit_hash,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewSuiteReport derives the global verdict: 100% iff every category passed,
// otherwise the passing ratio rounded to one decimal.
func NewSuiteReport(outcomes []CategoryOutcome) SuiteReport {
	rep := SuiteReport{Categories: outcomes, Timestamp: time.Now().UTC()}
	if len(outcomes) == 0 {
		return rep
	}
	passed := 0
	for _, c := range outcomes {
		if c.Passed {
			passed++
		}
	}
	if passed == len(outcomes) {
		rep.GlobalScore = 100
		rep.Passed = true
	} else {
		rep.GlobalScore = Round1(float64(passed) / float64(len(outcomes)) * 100)
	}
	return rep
}

// Round1 rounds to one decimal place, matching the report format.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
