package app

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"funnelboard/adapters/canvas"
	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal"
	"funnelboard/internal/analysis"
	"funnelboard/internal/errors"
	"funnelboard/internal/render"
	"funnelboard/ports"

	"golang.org/x/sync/errgroup"
)

// ServiceConfig controls how funnels are laid out, labelled and cached
type ServiceConfig struct {
	Layout      funnel.LayoutConfig
	Text        funnel.RenderConfig
	CacheTTL    time.Duration
	Concurrency int
	Background  string
}

// DefaultServiceConfig returns the dashboard defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Layout:      funnel.DefaultLayoutConfig(),
		Text:        funnel.DefaultRenderConfig(),
		CacheTTL:    5 * time.Minute,
		Concurrency: 4,
		Background:  "#ffffff",
	}
}

// FunnelService is the registry of named funnel sources and the entry point
// for loading, summarising and drawing them
type FunnelService struct {
	config ServiceConfig
	cache  *render.Cache
	logger *internal.Logger

	mu      sync.RWMutex
	sources map[core.FunnelName]ports.FunnelSource
	order   []core.FunnelName
}

// LoadResult is the outcome of loading one funnel during LoadAll
type LoadResult struct {
	Name    core.FunnelName   `json:"name"`
	Summary *analysis.Summary `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
}

// Rendered is an encoded pyramid
type Rendered struct {
	Data        []byte
	ContentType string
	RenderID    core.RenderID
	CacheHit    bool
}

// NewFunnelService creates an empty registry
func NewFunnelService(config ServiceConfig, logger *internal.Logger) *FunnelService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	s := &FunnelService{
		config:  config,
		logger:  logger,
		sources: make(map[core.FunnelName]ports.FunnelSource),
	}
	s.cache = render.NewCache(s.encode, config.CacheTTL)
	return s
}

// Register adds a source. Names must be unique.
func (s *FunnelService) Register(source ports.FunnelSource) error {
	name := source.Name()
	if name == "" {
		return errors.ValidationError("funnel source has no name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sources[name]; exists {
		return errors.ValidationError(fmt.Sprintf("funnel %q registered twice", name))
	}
	s.sources[name] = source
	s.order = append(s.order, name)
	s.logger.Debug("[FunnelService] registered funnel %s", name)
	return nil
}

// RegisterCatalog registers every source a catalog exposes
func (s *FunnelService) RegisterCatalog(ctx context.Context, catalog ports.FunnelCatalog) error {
	sources, err := catalog.Sources(ctx)
	if err != nil {
		return err
	}
	for _, source := range sources {
		if err := s.Register(source); err != nil {
			return err
		}
	}
	return nil
}

// Names lists funnels in registration order
func (s *FunnelService) Names() []core.FunnelName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.FunnelName(nil), s.order...)
}

// Get loads the current spec for a funnel
func (s *FunnelService) Get(ctx context.Context, name core.FunnelName) (funnel.Spec, error) {
	s.mu.RLock()
	source, ok := s.sources[name]
	s.mu.RUnlock()
	if !ok {
		return funnel.Spec{}, core.NewFunnelNotFoundError(name.String())
	}

	spec, err := source.Funnel(ctx)
	if err != nil {
		return funnel.Spec{}, err
	}
	return spec, nil
}

// Summary loads a funnel and computes its conversion report
func (s *FunnelService) Summary(ctx context.Context, name core.FunnelName) (analysis.Summary, error) {
	spec, err := s.Get(ctx, name)
	if err != nil {
		return analysis.Summary{}, err
	}
	return analysis.Summarize(name, spec)
}

// LoadAll summarises every registered funnel concurrently. A failing source
// is reported in its result and does not abort the others.
func (s *FunnelService) LoadAll(ctx context.Context) ([]LoadResult, error) {
	names := s.Names()
	results := make([]LoadResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = LoadResult{Name: name}
			summary, err := s.Summary(gctx, name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("[FunnelService] failed to load funnel %s: %v", name, err)
				results[i].Error = err.Error()
				results[i].Code = ErrorCode(err)
				return nil
			}
			results[i].Summary = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Draw lays out spec for area and renders it onto surface
func (s *FunnelService) Draw(spec funnel.Spec, area funnel.Area, surface funnel.Surface) ([]funnel.Band, error) {
	return Draw(spec, area, surface, s.config.Layout, s.config.Text)
}

// RenderImage draws a funnel into an encoded image, served from the render
// cache when the same funnel, size and data were drawn recently
func (s *FunnelService) RenderImage(ctx context.Context, name core.FunnelName, format canvas.Format, area funnel.Area) (Rendered, error) {
	if err := canvas.ValidateArea(area); err != nil {
		return Rendered{}, err
	}
	if format != canvas.FormatSVG && format != canvas.FormatPNG && format != canvas.FormatOps {
		return Rendered{}, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}

	spec, err := s.Get(ctx, name)
	if err != nil {
		return Rendered{}, err
	}

	renderID := core.NewRenderID()
	start := time.Now()
	data, hit, err := s.cache.Render(ctx, render.Request{
		Name:   name,
		Format: string(format),
		Area:   area,
		Spec:   spec,
	})
	if err != nil {
		s.logger.Error("[FunnelService] render %s failed for %s (%s %gx%g): %v", renderID, name, format, area.Width, area.Height, err)
		return Rendered{}, err
	}
	s.logger.Debug("[FunnelService] render %s %s %s %gx%g hit=%t in %s", renderID, name, format, area.Width, area.Height, hit, time.Since(start))

	return Rendered{
		Data:        data,
		ContentType: contentType(format),
		RenderID:    renderID,
		CacheHit:    hit,
	}, nil
}

// RenderOps returns the JSON display list the browser replays on its canvas
func (s *FunnelService) RenderOps(ctx context.Context, name core.FunnelName, area funnel.Area) (Rendered, error) {
	return s.RenderImage(ctx, name, canvas.FormatOps, area)
}

// PruneCache drops expired renders
func (s *FunnelService) PruneCache() int {
	return s.cache.Prune()
}

// CacheSize reports how many renders are held, expired ones included
func (s *FunnelService) CacheSize() int {
	return s.cache.Len()
}

func (s *FunnelService) encode(ctx context.Context, req render.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := canvas.New(canvas.Format(req.Format), req.Area, canvas.WithBackground(s.config.Background))
	if err != nil {
		return nil, err
	}
	if _, err := s.Draw(req.Spec, req.Area, target); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := target.WriteTo(&buf); err != nil {
		return nil, errors.RenderError(err)
	}
	return buf.Bytes(), nil
}

// Draw is ComputeLayout followed by Render
func Draw(spec funnel.Spec, area funnel.Area, surface funnel.Surface, layout funnel.LayoutConfig, text funnel.RenderConfig) ([]funnel.Band, error) {
	bands, err := funnel.ComputeLayout(spec, area, layout)
	if err != nil {
		return nil, err
	}
	if err := funnel.Render(bands, spec, surface, text); err != nil {
		return nil, err
	}
	return bands, nil
}

func contentType(format canvas.Format) string {
	switch format {
	case canvas.FormatPNG:
		return "image/png"
	case canvas.FormatSVG:
		return "image/svg+xml"
	}
	return "application/json"
}

// ErrorCode classifies an error into an application error code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsNotFoundError(err):
		return errors.CodeNotFound
	case errors.Is(err, core.ErrInvalidArea), errors.Is(err, core.ErrUnsupportedFormat):
		return errors.CodeInvalidInput
	case errors.Is(err, core.ErrEmptyFunnel):
		return errors.CodeEmptyFunnel
	case core.IsDataError(err):
		return errors.CodeValidationError
	case core.IsRenderError(err):
		return errors.CodeRenderError
	}
	return errors.GetCode(err)
}
