package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/metrics"
	"github.com/san-kum/verletsim/internal/sim"
)

// Scenario defines a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (canonical when empty) and overlays
// the keys given under config, using the same schema as a config file.
type ScenarioStep struct {
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	SaveAs string    `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Sim    sim.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the configuration of step i.
func (s *Scenario) Resolve(i int) (*config.Config, string, error) {
	step := s.Steps[i]
	preset := step.Preset
	if preset == "" {
		preset = "canonical"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, "", fmt.Errorf("step %d: unknown preset %q", i+1, preset)
	}
	if !step.Config.IsZero() {
		if err := step.Config.Decode(cfg); err != nil {
			return nil, "", fmt.Errorf("step %d config: %w", i+1, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("step %d: %w", i+1, err)
	}

	name := step.SaveAs
	if name == "" {
		name = fmt.Sprintf("%s_step%d", preset, i+1)
	}
	return cfg, name, nil
}

// RunScenario executes all steps in order. onStep, when set, is called
// after each completed step; returning an error stops the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, onStep func(i int, r StepResult) error) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		cfg, name, err := scenario.Resolve(i)
		if err != nil {
			return results, err
		}
		sc, err := cfg.Sim()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		s, err := sim.New(sc)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, m := range metrics.Default(false) {
			s.AddMetric(m)
		}

		result, err := s.RunFrames(ctx, cfg.Frames(), cfg.FrameDt)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		r := StepResult{Name: name, Config: cfg, Sim: sc, Result: result}
		results = append(results, r)
		if onStep != nil {
			if err := onStep(i, r); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}
