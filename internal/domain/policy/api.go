package policy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// EndpointKind names one probed endpoint of the stack under test.
type EndpointKind string

const (
	EndpointStatus      EndpointKind = "status"
	EndpointReady       EndpointKind = "ready"
	EndpointItems       EndpointKind = "items"
	EndpointMissingItem EndpointKind = "missing-item"
)

// EndpointExpectation declares one endpoint probe: path, expected status and
// response-time ceiling. The missing-item probe has no time ceiling; its only
// contract is the 404.
type EndpointExpectation struct {
	Kind       EndpointKind
	Path       string
	WantStatus int
	MaxElapsed time.Duration
}

// APIEndpoints is the fixed probe list of the api category, in catalog order.
func APIEndpoints() []EndpointExpectation {
	return []EndpointExpectation{
		{Kind: EndpointStatus, Path: "/status", WantStatus: 200, MaxElapsed: 1000 * time.Millisecond},
		{Kind: EndpointReady, Path: "/ready", WantStatus: 200, MaxElapsed: 2000 * time.Millisecond},
		{Kind: EndpointItems, Path: "/items", WantStatus: 200, MaxElapsed: 2000 * time.Millisecond},
		{Kind: EndpointMissingItem, Path: "/items/999999", WantStatus: 404},
	}
}

// EvaluateEndpoint applies the api category rules for one probed endpoint.
// A transport failure (no response at all, including timeout) fails every
// rule of the endpoint; it is distinguished in the reason from a received
// unexpected status.
func EvaluateEndpoint(target domain.Target, exp EndpointExpectation, f *domain.EndpointFacts) []domain.CheckResult {
	if f.TransportErr != "" {
		reason := "transport failure: " + f.TransportErr
		rules := endpointRules(exp)
		return failAll(target, reason, rules)
	}

	results := []domain.CheckResult{checkStatusCode(target, exp, f)}
	if exp.Kind != EndpointMissingItem {
		results = append(results,
			checkContentType(target, f),
			checkBodyShape(target, exp.Kind, f),
			checkResponseTime(target, exp, f),
		)
	}
	return results
}

func endpointRules(exp EndpointExpectation) []rule {
	rules := []rule{{RuleStatusCode, "Endpoint returns the expected status code"}}
	if exp.Kind != EndpointMissingItem {
		rules = append(rules,
			rule{RuleContentType, "Response content-type is JSON"},
			rule{RuleBodyShape, "Response body has the expected shape"},
			rule{RuleResponseTime, "Response time is within the ceiling"},
		)
	}
	return rules
}

func checkStatusCode(target domain.Target, exp EndpointExpectation, f *domain.EndpointFacts) domain.CheckResult {
	const name = "Endpoint returns the expected status code"
	if f.StatusCode != exp.WantStatus {
		return domain.Fail(RuleStatusCode, name, target,
			fmt.Sprintf("got HTTP %d, want %d", f.StatusCode, exp.WantStatus))
	}
	return domain.Pass(RuleStatusCode, name, target)
}

func checkContentType(target domain.Target, f *domain.EndpointFacts) domain.CheckResult {
	const name = "Response content-type is JSON"
	if !strings.Contains(f.ContentType, "application/json") {
		return domain.Fail(RuleContentType, name, target,
			fmt.Sprintf("content-type %q does not contain application/json", f.ContentType))
	}
	return domain.Pass(RuleContentType, name, target)
}

func checkResponseTime(target domain.Target, exp EndpointExpectation, f *domain.EndpointFacts) domain.CheckResult {
	const name = "Response time is within the ceiling"
	if f.Elapsed > exp.MaxElapsed {
		return domain.Fail(RuleResponseTime, name, target,
			fmt.Sprintf("%dms exceeds the %dms ceiling", f.Elapsed.Milliseconds(), exp.MaxElapsed.Milliseconds()))
	}
	return domain.Pass(RuleResponseTime, name, target).
		WithDetail("elapsed_ms", fmt.Sprintf("%d", f.Elapsed.Milliseconds()))
}

func checkBodyShape(target domain.Target, kind EndpointKind, f *domain.EndpointFacts) domain.CheckResult {
	const name = "Response body has the expected shape"

	switch kind {
	case EndpointStatus:
		var body struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(f.Body, &body); err != nil {
			return domain.Fail(RuleBodyShape, name, target, "Parse error")
		}
		if body.Status != "OK" {
			return domain.Fail(RuleBodyShape, name, target,
				fmt.Sprintf("status field is %q, want \"OK\"", body.Status))
		}
		return domain.Pass(RuleBodyShape, name, target)

	case EndpointReady:
		var body struct {
			Ready    bool   `json:"ready"`
			Database string `json:"database"`
		}
		if err := json.Unmarshal(f.Body, &body); err != nil {
			return domain.Fail(RuleBodyShape, name, target, "Parse error")
		}
		if !body.Ready || body.Database != "healthy" {
			return domain.Fail(RuleBodyShape, name, target,
				fmt.Sprintf("ready=%t database=%q, want ready=true database=\"healthy\"", body.Ready, body.Database)).
				WithDetail("database", body.Database)
		}
		return domain.Pass(RuleBodyShape, name, target)

	case EndpointItems:
		var items []struct {
			ID        *int    `json:"id"`
			Title     *string `json:"title"`
			Body      *string `json:"body"`
			CreatedAt *string `json:"createdAt"`
		}
		if err := json.Unmarshal(f.Body, &items); err != nil {
			return domain.Fail(RuleBodyShape, name, target, "Parse error")
		}
		for i, item := range items {
			if item.ID == nil || item.Title == nil || item.Body == nil || item.CreatedAt == nil {
				return domain.Fail(RuleBodyShape, name, target,
					fmt.Sprintf("item %d is missing required fields", i))
			}
		}
		return domain.Pass(RuleBodyShape, name, target).
			WithDetail("items", fmt.Sprintf("%d", len(items)))

	default:
		return domain.Pass(RuleBodyShape, name, target)
	}
}
