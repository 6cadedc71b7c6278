package classifier

import (
	"os"
	"slices"

	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"gopkg.in/yaml.v3"
)

// Mode selects how commits are classified
type Mode string

const (
	// ModeAuto uses the agent when it is configured and keywords otherwise
	ModeAuto    Mode = "auto"
	ModeKeyword Mode = "keyword"
	ModeAgent   Mode = "agent"
)

var supportedModes = []Mode{ModeAuto, ModeKeyword, ModeAgent}

// Config represents classifier configuration
type Config struct {
	Mode      Mode   `yaml:"mode" env:"CLASSIFIER_MODE"`
	RulesFile string `yaml:"rules_file" env:"CLASSIFIER_RULES_FILE"`

	// Rules replace the default keyword table, RulesFile takes precedence
	Rules []Rule `yaml:"rules"`
}

func (c *Config) PrepareAndValidate() error {
	c.Mode = lang.Check(c.Mode, ModeAuto)
	if !slices.Contains(supportedModes, c.Mode) {
		return errm.Errorf("invalid classifier mode: %s", c.Mode)
	}
	return nil
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a keyword table from a YAML file with a top level "rules" list
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errm.Wrap(err, "failed to read rules file")
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errm.Wrap(err, "failed to parse rules file")
	}
	if len(f.Rules) == 0 {
		return nil, errm.Errorf("rules file %s has no rules", path)
	}

	return f.Rules, nil
}

// New builds a classifier for the mode. Analyzer may be nil when no agent is configured,
// it is required only in agent mode.
func New(cfg Config, analyzer interfaces.CommitAnalyzer) (interfaces.Classifier, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	rules := cfg.Rules
	if cfg.RulesFile != "" {
		var err error
		rules, err = LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
	}

	keyword, err := NewKeyword(rules)
	if err != nil {
		return nil, errm.Wrap(err, "failed to build keyword table")
	}

	switch cfg.Mode {
	case ModeKeyword:
		return keyword, nil
	case ModeAgent:
		if analyzer == nil {
			return nil, errm.New("agent mode requires a configured agent, set AGENT_API_KEY")
		}
		return NewDelegated(analyzer, keyword), nil
	default:
		if analyzer == nil {
			return keyword, nil
		}
		return NewDelegated(analyzer, keyword), nil
	}
}
