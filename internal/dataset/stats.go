package dataset

import (
	"github.com/iwvelando/algoinvest/pkg/asset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution holds summary statistics for one numeric column.
type Distribution struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stdDev" yaml:"stdDev"`
}

// Stats describes a set of assets.
type Stats struct {
	Count     int          `json:"count" yaml:"count"`
	TotalCost float64      `json:"totalCost" yaml:"totalCost"`
	Cost      Distribution `json:"cost" yaml:"cost"`
	// RatePercent is the profit rate in percent.
	RatePercent Distribution `json:"ratePercent" yaml:"ratePercent"`
}

// Describe computes descriptive statistics over asset cost and profit rate.
func Describe(assets []asset.Asset) Stats {
	if len(assets) == 0 {
		return Stats{}
	}

	costs := make([]float64, len(assets))
	rates := make([]float64, len(assets))
	for i, a := range assets {
		costs[i] = a.Cost.Float64()
		rates[i] = a.RatePercent()
	}

	return Stats{
		Count:       len(assets),
		TotalCost:   floats.Sum(costs),
		Cost:        distribution(costs),
		RatePercent: distribution(rates),
	}
}

func distribution(data []float64) Distribution {
	d := Distribution{
		Min:  floats.Min(data),
		Max:  floats.Max(data),
		Mean: stat.Mean(data, nil),
	}
	// Sample standard deviation is undefined for a single value.
	if len(data) > 1 {
		d.StdDev = stat.StdDev(data, nil)
	}
	return d
}
