// Package validate checks generated dashboards and rule files: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/lab-catalog/tools/dashgen/rules"
)

// histogramSuffixes are the series suffixes Prometheus derives from a
// histogram's base name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Result collects validation findings. Errors fail generation; warnings are
// reported but tolerated.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// panelJSON is the subset of the Grafana panel model the validator reads.
// Going through JSON keeps it independent of the SDK's target variants.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Targets []targetRef `json:"targets"`
	Panels  []panelJSON `json:"panels"`
}

type targetRef struct {
	Expr  string `json:"expr"`
	RefID string `json:"refId"`
}

// Dashboard validates every target expression of every panel in dash,
// including panels nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	raw, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}

	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for i := range doc.Panels {
		res.merge(panel(&doc.Panels[i], known))
	}
	return res
}

func panel(p *panelJSON, known map[string]bool) Result {
	var res Result

	if p.Type == "row" || len(p.Panels) > 0 {
		if len(p.Panels) == 0 {
			res.warnf("row %q has no panels", p.Title)
		}
		for i := range p.Panels {
			res.merge(panel(&p.Panels[i], known))
		}
		return res
	}

	if len(p.Targets) == 0 {
		res.warnf("panel %q has no targets", p.Title)
	}
	for _, t := range p.Targets {
		res.merge(Expr(fmt.Sprintf("panel %q target %s", p.Title, t.RefID), t.Expr, known))
	}
	return res
}

// Rules validates every rule expression in cr. Alerting rules must carry a
// severity label; recording rule names must be listed in known so that
// dashboards referencing them stay in sync.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	for _, g := range cr.Spec.Groups {
		if len(g.Rules) == 0 {
			res.warnf("group %q has no rules", g.Name)
		}
		for _, r := range g.Rules {
			switch {
			case r.Record != "" && r.Alert != "":
				res.errorf("rule %q sets both record and alert", r.Record)
				continue
			case r.Record != "":
				if !known[r.Record] {
					res.errorf("recording rule %q is not a known metric", r.Record)
				}
				res.merge(Expr("record "+r.Record, r.Expr, known))
			case r.Alert != "":
				if r.Labels["severity"] == "" {
					res.errorf("alert %q has no severity label", r.Alert)
				}
				res.merge(Expr("alert "+r.Alert, r.Expr, known))
			default:
				res.errorf("group %q has a rule with neither record nor alert", g.Name)
			}
		}
	}
	return res
}

// Expr parses a single PromQL expression and checks the metric names it
// selects against known. where identifies the expression in messages.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return res
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: %v", where, err)
		return res
	}

	for _, name := range MetricNames(node) {
		if !isKnown(name, known) {
			res.errorf("%s: unknown metric %q", where, name)
		}
	}
	return res
}

// MetricNames returns the metric names selected anywhere in node, in the
// order they are first seen.
func MetricNames(node parser.Node) []string {
	var names []string
	seen := make(map[string]bool)
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" || seen[vs.Name] {
			return nil
		}
		seen[vs.Name] = true
		names = append(names, vs.Name)
		return nil
	})
	return names
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}
