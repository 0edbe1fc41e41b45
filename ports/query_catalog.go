package ports

import (
	"funnelboard/domain/core"
)

// QueryEntry is a named SQL statement shown alongside a chart
type QueryEntry struct {
	ID          core.QueryID `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Database    string       `json:"database" yaml:"database"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Query       string       `json:"query" yaml:"query"`
	Charts      []string     `json:"charts,omitempty" yaml:"charts"`
}

// Metric describes one dashboard metric and the question it answers
type Metric struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	PainPoint string `json:"pain_point" yaml:"pain_point"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
}

// MetricCategory groups related metrics
type MetricCategory struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Metrics     []Metric `json:"metrics" yaml:"metrics"`
}

// MetricsMetadata is the static metric index served to the dashboard
type MetricsMetadata struct {
	Categories []MetricCategory `json:"categories" yaml:"categories"`
}

// QueryCatalogPort provides read-only access to the SQL catalog
type QueryCatalogPort interface {
	List() []QueryEntry
	Get(id core.QueryID) (QueryEntry, error)
	DescriptionHTML(id core.QueryID) (string, error)
	ForChart(name core.FunnelName) []QueryEntry
	Metadata() MetricsMetadata
}
