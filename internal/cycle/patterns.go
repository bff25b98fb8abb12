package cycle

import (
	"math"

	"femwork/internal/engine"
)

// regularSpreadDays is the widest spread of cycle lengths still called regular.
const regularSpreadDays = 3

// Patterns summarises a user's period history.
type Patterns struct {
	AvgCycleLength  int   `json:"avg_cycle_length"`
	AvgPeriodLength int   `json:"avg_period_length"`
	Regular         bool  `json:"regular"`
	TotalPeriods    int   `json:"total_periods"`
	CycleLengths    []int `json:"cycle_lengths"`
	PeriodLengths   []int `json:"period_lengths"`
}

// AnalysePatterns derives average lengths and regularity from periods ordered
// oldest first. It returns nil when fewer than two periods are known.
func AnalysePatterns(history []Period) *Patterns {
	if len(history) < 2 {
		return nil
	}

	p := &Patterns{TotalPeriods: len(history)}
	for i := 1; i < len(history); i++ {
		p.CycleLengths = append(p.CycleLengths, engine.DaysBetween(history[i-1].StartDate, history[i].StartDate))
	}
	for _, h := range history {
		if h.PeriodLength > 0 {
			p.PeriodLengths = append(p.PeriodLengths, h.PeriodLength)
		}
	}

	p.AvgCycleLength = roundedMean(p.CycleLengths)
	p.AvgPeriodLength = roundedMean(p.PeriodLengths)

	lo, hi := p.CycleLengths[0], p.CycleLengths[0]
	for _, l := range p.CycleLengths[1:] {
		lo, hi = min(lo, l), max(hi, l)
	}
	p.Regular = hi-lo <= regularSpreadDays
	return p
}

func roundedMean(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return int(math.Round(float64(sum) / float64(len(xs))))
}
