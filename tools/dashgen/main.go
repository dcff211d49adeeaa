package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/lab-catalog/tools/dashgen/dashboards"
	"github.com/donaldgifford/lab-catalog/tools/dashgen/rules"
	"github.com/donaldgifford/lab-catalog/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by dashgen. DO NOT EDIT.\n"

// Output locations relative to Config.OutputDir.
var (
	dashboardPath = filepath.Join("grafana", "data", "labcat-overview.json")
	recordingPath = filepath.Join("prometheus", "labcat-recording-rules.yaml")
	alertsPath    = filepath.Join("prometheus", "labcat-alerts.yaml")
)

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// artifact is one generated file.
type artifact struct {
	path string
	data []byte
}

func run(cfg Config, validateOnly bool) error {
	artifacts, result, err := generate(cfg)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Ok() {
		return fmt.Errorf("validation failed:\n  %s", strings.Join(result.Errors, "\n  "))
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	fmt.Printf("dashgen: output dir = %s\n", cfg.OutputDir)
	for _, a := range artifacts {
		path := filepath.Join(cfg.OutputDir, a.path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // generated artifacts are world-readable
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, a.data, 0o644); err != nil { //nolint:gosec // generated artifacts are world-readable
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("dashgen: wrote %s\n", path)
	}
	return nil
}

// generate renders every enabled artifact and validates it.
func generate(cfg Config) ([]artifact, validate.Result, error) {
	var (
		artifacts []artifact
		result    validate.Result
	)

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, result, fmt.Errorf("building overview dashboard: %w", err)
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, result, fmt.Errorf("marshaling overview dashboard: %w", err)
		}
		artifacts = append(artifacts, artifact{path: dashboardPath, data: append(data, '\n')})
		result = merge(result, validate.Dashboard(dash, KnownMetrics))
	}

	if cfg.RulesEnabled {
		for _, r := range []struct {
			path string
			cr   rules.PrometheusRule
		}{
			{recordingPath, rules.RecordingRules()},
			{alertsPath, rules.AlertRules()},
		} {
			data, err := yaml.Marshal(r.cr)
			if err != nil {
				return nil, result, fmt.Errorf("marshaling %s: %w", r.cr.Metadata.Name, err)
			}
			artifacts = append(artifacts, artifact{
				path: r.path,
				data: append([]byte(generatedHeader), data...),
			})
			result = merge(result, validate.Rules(r.cr, KnownMetrics))
		}
	}

	if len(artifacts) == 0 {
		return nil, result, errors.New("nothing to generate")
	}
	return artifacts, result, nil
}

func merge(a, b validate.Result) validate.Result {
	a.Errors = append(a.Errors, b.Errors...)
	a.Warnings = append(a.Warnings, b.Warnings...)
	return a
}
