package queries

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"funnelboard/domain/core"
	"funnelboard/internal/errors"
	"funnelboard/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed metrics.yaml
var defaultMetrics []byte

// Catalog is the read-only SQL catalog shown in the query modal
type Catalog struct {
	entries map[core.QueryID]ports.QueryEntry
	order   []core.QueryID

	metadata ports.MetricsMetadata

	mu   sync.RWMutex
	html map[core.QueryID]string
}

var _ ports.QueryCatalogPort = (*Catalog)(nil)

// Default loads the embedded catalog and metric index
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, err
	}
	metadata, err := ParseMetadata(defaultMetrics)
	if err != nil {
		return nil, err
	}
	c.metadata = metadata
	return c, nil
}

// Parse builds a catalog from YAML. IDs must be unique and every entry needs
// a query.
func Parse(data []byte) (*Catalog, error) {
	var raw []ports.QueryEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ConfigInvalid("query catalog is not valid YAML: " + err.Error())
	}

	c := &Catalog{
		entries: make(map[core.QueryID]ports.QueryEntry, len(raw)),
		html:    make(map[core.QueryID]string),
	}
	for i, entry := range raw {
		id, err := core.ParseQueryID(string(entry.ID))
		if err != nil {
			return nil, errors.Wrapf(err, "query catalog entry %d", i)
		}
		if _, dup := c.entries[id]; dup {
			return nil, errors.ConfigInvalid("duplicate query id " + id.String())
		}
		if strings.TrimSpace(entry.Query) == "" {
			return nil, errors.ConfigInvalid("query " + id.String() + " has no SQL")
		}
		entry.ID = id
		entry.Query = strings.TrimRight(entry.Query, "\n")
		c.entries[id] = entry
		c.order = append(c.order, id)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c, nil
}

// List returns every entry ordered by id
func (c *Catalog) List() []ports.QueryEntry {
	out := make([]ports.QueryEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Get returns one entry or core.ErrQueryNotFound
func (c *Catalog) Get(id core.QueryID) (ports.QueryEntry, error) {
	entry, ok := c.entries[id]
	if !ok {
		return ports.QueryEntry{}, core.ErrQueryNotFound
	}
	return entry, nil
}

// ForChart returns the entries attached to a funnel chart
func (c *Catalog) ForChart(name core.FunnelName) []ports.QueryEntry {
	var out []ports.QueryEntry
	for _, id := range c.order {
		entry := c.entries[id]
		for _, chart := range entry.Charts {
			if chart == name.String() {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// DescriptionHTML renders an entry's markdown description. Results are memoised.
func (c *Catalog) DescriptionHTML(id core.QueryID) (string, error) {
	c.mu.RLock()
	cached, ok := c.html[id]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	entry, err := c.Get(id)
	if err != nil {
		return "", err
	}

	rendered := renderMarkdown(entry.Description)

	c.mu.Lock()
	c.html[id] = rendered
	c.mu.Unlock()
	return rendered, nil
}

func renderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	return string(markdown.ToHTML([]byte(src), p, r))
}
