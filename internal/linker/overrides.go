package linker

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var overridesYAML []byte

type overrideFile struct {
	Variants [][]string `yaml:"variants"`
}

// embeddedOverrides parses the compiled-in variant table. The file is
// part of the build, so a parse failure is a programming error.
func embeddedOverrides() [][]string {
	var parsed overrideFile
	if err := yaml.Unmarshal(overridesYAML, &parsed); err != nil {
		panic(fmt.Sprintf("linker: bad embedded overrides.yaml: %v", err))
	}
	return parsed.Variants
}
