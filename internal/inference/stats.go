package inference

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ductnet/internal/domain"
)

// Stats summarises the routes of one run
type Stats struct {
	RoutesTotal      int                 `json:"routes_total"`
	OwnersAssigned   int                 `json:"owners_assigned"`
	OwnersUnknown    int                 `json:"owners_unknown"`
	TotalUnaccounted int                 `json:"total_unaccounted"`
	UsedUnaccounted  int                 `json:"used_unaccounted"`
	ByTier           map[domain.Tier]int `json:"by_tier,omitempty"`
	MeanLengthM      float64             `json:"mean_length_m"`
	MaxLengthM       float64             `json:"max_length_m"`
	TotalLengthM     float64             `json:"total_length_m"`
	MeanConfidence   float64             `json:"mean_confidence"`
	MeanHops         float64             `json:"mean_hops"`
}

// Coverage returns the share of unaccounted capacity explained, in [0,1]
func (s Stats) Coverage() float64 {
	if s.TotalUnaccounted == 0 {
		return 0
	}
	return float64(s.UsedUnaccounted) / float64(s.TotalUnaccounted)
}

func computeStats(r *Result) Stats {
	s := Stats{
		RoutesTotal:      len(r.Routes),
		TotalUnaccounted: r.TotalUnaccounted,
		UsedUnaccounted:  r.UsedUnaccounted,
		ByTier:           make(map[domain.Tier]int),
	}
	if len(r.Routes) == 0 {
		return s
	}

	lengths := make([]float64, len(r.Routes))
	confidence := make([]float64, len(r.Routes))
	hops := make([]float64, len(r.Routes))
	for i, route := range r.Routes {
		lengths[i] = route.LengthM
		confidence[i] = route.Confidence
		hops[i] = float64(route.Hops())
		s.ByTier[route.Tier]++
		if route.OwnerUndetermined {
			s.OwnersUnknown++
		} else {
			s.OwnersAssigned++
		}
	}

	s.MeanLengthM = stat.Mean(lengths, nil)
	s.MaxLengthM = floats.Max(lengths)
	s.TotalLengthM = floats.Sum(lengths)
	s.MeanConfidence = stat.Mean(confidence, nil)
	s.MeanHops = stat.Mean(hops, nil)
	return s
}
