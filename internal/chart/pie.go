// Package chart renders the category breakdown as an SVG pie. Rendering
// is optional for the application: when no renderer is configured the UI
// falls back to a status message.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// palette matches the category order as buckets appear, cycling through
// tint-shifted repeats once exhausted.
var palette = []string{
	"#536dfe", "#4caf50", "#ff9800", "#e91e63", "#9c27b0",
	"#009688", "#ff5722", "#3f51b5", "#8bc34a", "#ffc107",
}

// Datum is one pie slice before rendering.
type Datum struct {
	Label string
	Value float64
}

// Renderer produces SVG pies of a fixed size.
type Renderer struct {
	size    int
	padding float64
}

// NewRenderer returns a renderer for a size x size viewport.
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = 240
	}
	return &Renderer{size: size, padding: 4}
}

// SliceColor returns the fill for the i-th slice. Beyond the base palette
// the colors repeat with a progressively lighter tint so neighbouring
// repeats stay distinguishable.
func SliceColor(i int) string {
	if i < len(palette) {
		return palette[i]
	}
	round := i / len(palette)
	return shadeColor(palette[i%len(palette)], float64(round)*0.25)
}

// shadeColor lightens a #rrggbb color towards white by factor in [0, 1].
func shadeColor(hex string, factor float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	tint := func(c int) int {
		return c + int(float64(255-c)*factor)
	}
	return fmt.Sprintf("#%02x%02x%02x", tint(r), tint(g), tint(b))
}

// Render draws the data as a pie. Zero or negative values are skipped; if
// nothing remains the result is an empty string and the caller shows its
// fallback. A single slice becomes a full circle since an arc cannot span
// the whole turn.
func (r *Renderer) Render(data []Datum) string {
	var total float64
	visible := make([]Datum, 0, len(data))
	for _, d := range data {
		if d.Value <= 0 || math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
			continue
		}
		visible = append(visible, d)
		total += d.Value
	}
	if len(visible) == 0 || total == 0 {
		return ""
	}

	cx := float64(r.size) / 2
	cy := cx
	radius := cx - r.padding

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="Spending by category">`, r.size, r.size)

	if len(visible) == 1 {
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"><title>%s</title></circle>`,
			coord(cx), coord(cy), coord(radius), SliceColor(0), sliceTitle(visible[0], total))
	} else {
		angle := -math.Pi / 2
		for i, d := range visible {
			sweep := d.Value / total * 2 * math.Pi
			x1 := cx + radius*math.Cos(angle)
			y1 := cy + radius*math.Sin(angle)
			angle += sweep
			x2 := cx + radius*math.Cos(angle)
			y2 := cy + radius*math.Sin(angle)
			largeArc := 0
			if sweep > math.Pi {
				largeArc = 1
			}
			fmt.Fprintf(&b, `<path d="M %s %s L %s %s A %s %s 0 %d 1 %s %s Z" fill="%s"><title>%s</title></path>`,
				coord(cx), coord(cy), coord(x1), coord(y1),
				coord(radius), coord(radius), largeArc,
				coord(x2), coord(y2), SliceColor(i), sliceTitle(d, total))
		}
	}

	b.WriteString("</svg>")
	return b.String()
}

// Fingerprint digests the data into a cache key: identical breakdowns
// yield identical keys regardless of slice order.
func Fingerprint(data []Datum) string {
	parts := make([]string, 0, len(data))
	for _, d := range data {
		parts = append(parts, fmt.Sprintf("%s=%.2f", d.Label, d.Value))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// sliceTitle labels a slice tooltip with its share of the total.
func sliceTitle(d Datum, total float64) string {
	return fmt.Sprintf("%s (%.1f%%)", escape(d.Label), d.Value/total*100)
}

func coord(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
