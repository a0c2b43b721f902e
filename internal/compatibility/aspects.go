package compatibility

import "math"

// AspectKind names an angular relationship between two positions.
type AspectKind string

const (
	Conjunction AspectKind = "conjunction"
	Sextile     AspectKind = "sextile"
	Square      AspectKind = "square"
	Trine       AspectKind = "trine"
	Opposition  AspectKind = "opposition"
	// NoAspect means the separation fell outside every orb.
	NoAspect AspectKind = "none"
)

// Baseline is the per-pair score of a separation that forms no aspect.
// Aspect contributions are added to it.
const Baseline = 50.0

// Aspect is an exact angle with a symmetric tolerance window. A separation d
// matches when |d - Angle| <= Orb.
type Aspect struct {
	Kind         AspectKind
	Angle        float64
	Orb          float64
	Contribution float64
}

// DefaultAspects are the five major aspects with conventional synastry orbs.
var DefaultAspects = []Aspect{
	{Kind: Conjunction, Angle: 0, Orb: 8, Contribution: 40},
	{Kind: Sextile, Angle: 60, Orb: 6, Contribution: 25},
	{Kind: Square, Angle: 90, Orb: 7, Contribution: -15},
	{Kind: Trine, Angle: 120, Orb: 8, Contribution: 45},
	{Kind: Opposition, Angle: 180, Orb: 8, Contribution: -10},
}

// Classify picks the aspect for a separation in degrees. When orbs overlap the
// aspect whose exact angle is numerically closest wins; on an exact tie the
// one with the larger contribution is kept so the result does not depend on
// table order. ok is false when no orb contains d.
func Classify(d float64, aspects []Aspect) (Aspect, bool) {
	var (
		best     Aspect
		bestDist = math.Inf(1)
		found    bool
	)
	for _, a := range aspects {
		dist := math.Abs(d - a.Angle)
		if dist > a.Orb {
			continue
		}
		if dist < bestDist || (dist == bestDist && a.Contribution > best.Contribution) {
			best, bestDist, found = a, dist, true
		}
	}
	if !found {
		return Aspect{Kind: NoAspect}, false
	}
	return best, true
}

// PairScore is the 0..100 score of one body pair at separation d.
func PairScore(d float64, aspects []Aspect) (float64, AspectKind) {
	a, ok := Classify(d, aspects)
	if !ok {
		return Baseline, NoAspect
	}
	return clamp(Baseline+a.Contribution, 0, 100), a.Kind
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
