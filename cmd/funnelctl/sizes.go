package main

import (
	"fmt"
	"strconv"
	"strings"

	"funnelboard/adapters/canvas"
	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

// parseSizes parses WIDTHxHEIGHT values
func parseSizes(raw []string) ([]funnel.Area, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --size is required")
	}
	areas := make([]funnel.Area, 0, len(raw))
	for _, s := range raw {
		w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not WIDTHxHEIGHT", core.ErrInvalidArea, s)
		}
		width, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad width in %q", core.ErrInvalidArea, s)
		}
		height, err := strconv.ParseFloat(h, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad height in %q", core.ErrInvalidArea, s)
		}
		area := funnel.Area{Width: width, Height: height}
		if err := canvas.ValidateArea(area); err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	return areas, nil
}

func frameFileName(name core.FunnelName, area funnel.Area, format canvas.Format) string {
	return fmt.Sprintf("%s-%gx%g.%s", name, area.Width, area.Height, format)
}
