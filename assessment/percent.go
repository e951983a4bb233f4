package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Percent is a 0-100 value. Providers report readiness figures either as
// numbers or as strings such as "92%"; both forms decode.
type Percent float64

func (p *Percent) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Percent(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("percent: %w", err)
	}
	return p.parse(s)
}

func (p *Percent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("percent: line %d: expected a scalar, got %s", node.Line, nodeKind(node.Kind))
	}
	return p.parse(node.Value)
}

// Valid reports whether p lies within 0-100.
func (p Percent) Valid() bool {
	f := float64(p)
	return !math.IsNaN(f) && f >= 0 && f <= 100
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "node"
	}
}

func (p *Percent) parse(s string) error {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("percent %q: %w", s, err)
	}
	*p = Percent(n)
	return nil
}
