// Package rules builds the labcat recording and alert rules as Prometheus
// Operator PrometheusRule resources.
package rules

import "fmt"

// Resource identity shared by every labcat rule file.
const (
	APIVersion = "monitoring.coreos.com/v1"
	Kind       = "PrometheusRule"

	// selectorLabel is matched by the Prometheus ruleSelector that loads
	// labcat's rules.
	selectorLabel = "prometheus"
	selectorValue = "system-rules-prometheus"
)

// Severity is the value of an alert's severity label.
type Severity string

// Alert severities, from paging to informational.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// PrometheusRule is the custom resource written to deploy/prometheus.
type PrometheusRule struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   PrometheusRuleMetadata `yaml:"metadata"`
	Spec       PrometheusRuleSpec     `yaml:"spec"`
}

// PrometheusRuleMetadata holds the resource name and selector labels.
type PrometheusRuleMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// PrometheusRuleSpec holds the rule groups.
type PrometheusRuleSpec struct {
	Groups []RuleGroup `yaml:"groups"`
}

// RuleGroup is a named set of rules evaluated together.
type RuleGroup struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval,omitempty"`
	Rules    []Rule `yaml:"rules"`
}

// Rule is either a recording rule (Record set) or an alert (Alert set).
type Rule struct {
	Record      string            `yaml:"record,omitempty"`
	Alert       string            `yaml:"alert,omitempty"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// New returns a PrometheusRule named name carrying the labcat selector
// label and one group per argument.
func New(name string, groups ...RuleGroup) PrometheusRule {
	return PrometheusRule{
		APIVersion: APIVersion,
		Kind:       Kind,
		Metadata: PrometheusRuleMetadata{
			Name:   name,
			Labels: map[string]string{selectorLabel: selectorValue},
		},
		Spec: PrometheusRuleSpec{Groups: groups},
	}
}

// Group returns a rule group evaluated at the Prometheus default interval.
func Group(name string, rules ...Rule) RuleGroup {
	return RuleGroup{Name: name, Rules: rules}
}

// Recording returns a recording rule storing expr as a 5m rate named
// labcat:<series>:rate5m.
func Recording(series, expr string) Rule {
	return Rule{Record: RateName(series), Expr: expr}
}

// RateName is the recorded series name for a labcat 5m rate.
func RateName(series string) string {
	return fmt.Sprintf("labcat:%s:rate5m", series)
}

// Alert returns an alerting rule with the labcat annotation set.
func Alert(name, expr, pending string, sev Severity, summary, description string) Rule {
	return Rule{
		Alert:  name,
		Expr:   expr,
		For:    pending,
		Labels: map[string]string{"severity": string(sev)},
		Annotations: map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
}

// Rules returns every rule in cr in group order.
func (cr PrometheusRule) Rules() []Rule {
	var out []Rule
	for _, g := range cr.Spec.Groups {
		out = append(out, g.Rules...)
	}
	return out
}
