package racelog

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// recentWindow is how many of the latest races feed the moving average.
const recentWindow = 100

// Summary aggregates the rating history of the whole log.
type Summary struct {
	TotalRaces int
	// RecentMean is the mean final rate over the last recentWindow races.
	RecentMean float64
	MaxRate    int
	MinRate    int
}

// Stats computes summary statistics over all persisted records.
func (s *Store) Stats() (Summary, error) {
	recs, err := s.All()
	if err != nil {
		return Summary{}, err
	}
	if len(recs) == 0 {
		return Summary{}, nil
	}

	rates := make([]float64, len(recs))
	for i, r := range recs {
		rates[i] = float64(r.Rate)
	}

	recent := rates
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	return Summary{
		TotalRaces: len(recs),
		RecentMean: stat.Mean(recent, nil),
		MaxRate:    int(floats.Max(rates)),
		MinRate:    int(floats.Min(rates)),
	}, nil
}
