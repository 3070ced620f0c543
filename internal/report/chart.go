package report

import (
	"fmt"
	"math"

	"travelspend/internal/core"
)

// Fixed chart palette.
const (
	ColorOnboarded = "#00CC96"
	ColorUnmanaged = "#EF553B"
	ColorDefault   = "#636EFA"
)

// Pie geometry in SVG user units; the viewBox is 0 0 200 200.
const (
	pieCenter = 100.0
	pieRadius = 90.0
)

// StatusColor returns the fixed colour for a Status value.
func StatusColor(status string) string {
	switch status {
	case core.StatusOnboarded:
		return ColorOnboarded
	case core.StatusUnmanaged:
		return ColorUnmanaged
	default:
		return ColorDefault
	}
}

// PieSlice is one segment of the spend-by-status pie.
type PieSlice struct {
	Label   string
	Amount  string
	Percent float64
	Color   string
	// Path is an SVG path for the segment. It is empty when Full is set, in
	// which case the segment is drawn as a whole circle.
	Path   string
	Full   bool
	LabelX float64
	LabelY float64
}

// PieSlices lays out status totals clockwise from twelve o'clock. Segments
// with a zero share are omitted.
func PieSlices(totals []StatusTotal) []PieSlice {
	var out []PieSlice
	angle := -math.Pi / 2
	for _, st := range totals {
		if st.Percent <= 0 {
			continue
		}
		frac := st.Percent / 100
		slice := PieSlice{
			Label:   st.Status,
			Amount:  core.FormatSpend(st.Spend),
			Percent: st.Percent,
			Color:   st.Color,
		}
		if frac >= 0.99999 {
			slice.Full = true
			slice.LabelX, slice.LabelY = pieCenter, pieCenter
			out = append(out, slice)
			continue
		}
		end := angle + frac*2*math.Pi
		x0, y0 := polar(angle, pieRadius)
		x1, y1 := polar(end, pieRadius)
		large := 0
		if frac > 0.5 {
			large = 1
		}
		slice.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
			pieCenter, pieCenter, x0, y0, pieRadius, pieRadius, large, x1, y1)
		slice.LabelX, slice.LabelY = polar(angle+frac*math.Pi, pieRadius*0.6)
		out = append(out, slice)
		angle = end
	}
	return out
}

func polar(angle, r float64) (float64, float64) {
	return round2(pieCenter + r*math.Cos(angle)), round2(pieCenter + r*math.Sin(angle))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BarRow is one row of the horizontal unmanaged spend ranking.
type BarRow struct {
	Label  string
	Amount string
	Width  int // percent of the widest bar
	Color  string
}

// Bars scales the ranking against its largest total.
func Bars(top []OrgTotal) []BarRow {
	var largest float64
	for _, o := range top {
		if v := o.Spend.InexactFloat64(); v > largest {
			largest = v
		}
	}
	out := make([]BarRow, 0, len(top))
	for _, o := range top {
		width := 0
		v := o.Spend.InexactFloat64()
		if largest > 0 && v > 0 {
			width = int(math.Round(v * 100 / largest))
			if width < 2 { // ensure visibility for very small values
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		out = append(out, BarRow{
			Label:  o.Organisation,
			Amount: core.FormatSpend(o.Spend),
			Width:  width,
			Color:  ColorUnmanaged,
		})
	}
	return out
}
