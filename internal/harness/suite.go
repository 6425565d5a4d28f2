package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SuiteResult summarizes a directory run.
type SuiteResult struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Results  []CaseResult  `json:"results"`
	Failures []CaseFailure `json:"failures,omitempty"`
}

// CaseResult is one scenario's outcome within a suite.
type CaseResult struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
}

// CaseFailure records why a scenario failed.
type CaseFailure struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Errors []string `json:"errors"`
}

// RunDir loads every scenario in dir and runs them concurrently, at most
// GOMAXPROCS at a time. Results are reported in path order. A non-empty
// filter is a glob matched against scenario names.
//
// A scenario that fails to execute counts as failed with the execution
// error as its message; the remaining scenarios still run. A load error
// or a cancelled context aborts the suite.
func (h *Harness) RunDir(ctx context.Context, dir, filter string) (*SuiteResult, error) {
	scenarios, paths, err := LoadScenarios(dir)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	type outcome struct {
		scenario *Scenario
		path     string
		result   *Result
		err      error
	}
	var selected []*outcome
	for i, scenario := range scenarios {
		if filter != "" {
			if ok, _ := filepath.Match(filter, scenario.Name); !ok {
				continue
			}
		}
		selected = append(selected, &outcome{scenario: scenario, path: paths[i]})
	}

	// Each scenario owns its in-memory store, so runs share nothing.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, o := range selected {
		o := o
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o.result, o.err = h.Run(gctx, o.scenario)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suite := &SuiteResult{}
	for _, o := range selected {
		name := o.scenario.Name
		suite.Total++

		if o.err != nil {
			suite.Failed++
			suite.Results = append(suite.Results, CaseResult{Name: name, Path: o.path})
			suite.Failures = append(suite.Failures, CaseFailure{
				Name:   name,
				Path:   o.path,
				Errors: []string{fmt.Sprintf("scenario execution failed: %v", o.err)},
			})
			continue
		}

		suite.Results = append(suite.Results, CaseResult{Name: name, Path: o.path, Result: o.result})
		if !o.result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, CaseFailure{
				Name:   name,
				Path:   o.path,
				Errors: o.result.Errors,
			})
			continue
		}
		suite.Passed++
	}

	h.logger.Info("suite completed",
		zap.String("dir", filepath.Clean(dir)),
		zap.Int("total", suite.Total),
		zap.Int("passed", suite.Passed),
		zap.Int("failed", suite.Failed))

	return suite, nil
}
