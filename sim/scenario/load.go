package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads a scenario from path, dispatching on file extension: ".json"
// uses encoding/json (the canonical format shown in spec §6); ".yaml"/".yml"
// uses gopkg.in/yaml.v3 as an equally-supported convenience format. Applies
// scenario-level defaults and runs structural validation (spec §7) before
// returning. A duration-over-365-days condition is logged as a warning, not
// an error (spec §6).
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	var s Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("scenario: parsing %s as YAML: %w", path, err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("scenario: parsing %s as JSON: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("scenario: unrecognized extension %q for %s", ext, path)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: validating %s: %w", path, err)
	}
	if warning := s.DurationWarning(); warning != "" {
		logrus.Warn(warning)
	}
	return &s, nil
}
