package queries

import (
	"strings"

	"funnelboard/internal/errors"
	"funnelboard/ports"

	"gopkg.in/yaml.v3"
)

// ParseMetadata reads the metric index. Category ids must be unique and every
// metric needs an id and a name.
func ParseMetadata(data []byte) (ports.MetricsMetadata, error) {
	var md ports.MetricsMetadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return ports.MetricsMetadata{}, errors.ConfigInvalid("metrics metadata is not valid YAML: " + err.Error())
	}

	seen := make(map[string]bool, len(md.Categories))
	for i, cat := range md.Categories {
		id := strings.TrimSpace(cat.ID)
		if id == "" {
			return ports.MetricsMetadata{}, errors.ConfigInvalid("metric category " + cat.Name + " has no id")
		}
		if seen[id] {
			return ports.MetricsMetadata{}, errors.ConfigInvalid("duplicate metric category " + id)
		}
		seen[id] = true
		for _, m := range cat.Metrics {
			if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
				return ports.MetricsMetadata{}, errors.ConfigInvalid("metric in category " + id + " needs an id and a name")
			}
		}
		if md.Categories[i].Metrics == nil {
			md.Categories[i].Metrics = []ports.Metric{}
		}
	}
	if md.Categories == nil {
		md.Categories = []ports.MetricCategory{}
	}
	return md, nil
}

// Metadata returns the metric index. A catalog built with Parse alone has no
// categories.
func (c *Catalog) Metadata() ports.MetricsMetadata {
	if c.metadata.Categories == nil {
		return ports.MetricsMetadata{Categories: []ports.MetricCategory{}}
	}
	return c.metadata
}
