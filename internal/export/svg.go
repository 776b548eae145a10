package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// TrajectoriesToSVG draws one path per body, all sharing a single padded
// bounding box so relative positions are preserved. World y maps straight
// to SVG y, matching the live view.
func TrajectoriesToSVG(paths [][]dynamo.Vec2, colors []string, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	points := 0
	for _, path := range paths {
		for _, p := range path {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
			points++
		}
	}
	if points == 0 {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	// keep aspect ratio
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2
	project := func(p dynamo.Vec2) (float64, float64) {
		x := offX + (p.X-minX)*scale
		y := offY + (p.Y-minY)*scale
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		color := "#00ff00"
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, p := range path {
			x, y := project(p)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		x, y := project(path[len(path)-1])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x, y, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Paths regroups snapshots into one position list per body.
func Paths(snaps []dynamo.Snapshot) [][]dynamo.Vec2 {
	if len(snaps) == 0 {
		return nil
	}
	paths := make([][]dynamo.Vec2, len(snaps[0].Bodies))
	for _, s := range snaps {
		for i, b := range s.Bodies {
			if i < len(paths) {
				paths[i] = append(paths[i], b.Position)
			}
		}
	}
	return paths
}
