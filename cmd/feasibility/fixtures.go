package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/feasibility/tools"
)

// fixtureFile is a set of static provider answers keyed by tool name.
type fixtureFile struct {
	Providers map[string]fixture `yaml:"providers"`
}

// fixture answers one tool. When By is set, Results is keyed by the value
// of that call parameter; otherwise Result is returned for every call.
type fixture struct {
	Section     string         `yaml:"section"`
	Description string         `yaml:"description,omitempty"`
	Result      any            `yaml:"result,omitempty"`
	By          string         `yaml:"by,omitempty"`
	Results     map[string]any `yaml:"results,omitempty"`
	Error       string         `yaml:"error,omitempty"`
}

func loadFixtures(path string) (*fixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("fixtures %s define no providers", path)
	}
	return &f, nil
}

// register adds one static provider per fixture, in name order.
func (f *fixtureFile) register(reg *tools.Registry) error {
	names := make([]string, 0, len(f.Providers))
	for name := range f.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fx := f.Providers[name]
		tool := tools.Tool{
			Name:        name,
			Section:     fx.Section,
			Description: fx.Description,
		}
		if err := reg.Register(tool, fx.handler(name)); err != nil {
			return err
		}
	}
	return nil
}

func (fx fixture) handler(name string) tools.Handler {
	return func(_ context.Context, params map[string]any) (any, error) {
		if fx.Error != "" {
			return nil, errors.New(fx.Error)
		}
		if fx.By == "" {
			return fx.Result, nil
		}
		key := fmt.Sprint(params[fx.By])
		result, ok := fx.Results[key]
		if !ok {
			return nil, fmt.Errorf("%s: no fixture for %s=%q", name, fx.By, key)
		}
		return result, nil
	}
}
