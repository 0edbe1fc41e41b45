package ports

import (
	"context"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

// FunnelSource resolves one named funnel into an ordered spec. Sources never
// know about layout or rendering.
type FunnelSource interface {
	Name() core.FunnelName
	Funnel(ctx context.Context) (funnel.Spec, error)
}

// FunnelCatalog enumerates funnels exposed by a multi-funnel backend such as a
// workbook with one sheet per funnel.
type FunnelCatalog interface {
	Sources(ctx context.Context) ([]FunnelSource, error)
}

// SurfaceFactory creates a fresh drawing surface sized to area
type SurfaceFactory func(area funnel.Area) (funnel.Surface, error)
