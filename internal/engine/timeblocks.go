package engine

// Block is a share of the day's focus hours.
type Block struct {
	Hours   float64 `json:"hours"`
	Quality string  `json:"quality"`
}

// TimeBlocks splits the day's focus hours into morning, afternoon and evening.
type TimeBlocks struct {
	Morning   Block `json:"morning"`
	Afternoon Block `json:"afternoon"`
	Evening   Block `json:"evening"`
}

// TimeBlocks distributes the check-in's focus hours across the day.
// Follicular and Ovulatory days front-load the morning.
func (e *Engine) TimeBlocks(c CheckInContext) TimeBlocks {
	hours := e.Capacity(c).FocusHours
	morningPeak := c.Phase == PhaseFollicular || c.Phase == PhaseOvulatory

	split := [3]float64{0.4, 0.4, 0.2}
	morningQuality := "good"
	if morningPeak {
		split = [3]float64{0.6, 0.3, 0.1}
		morningQuality = "peak"
	}

	eveningQuality := "low"
	if c.Energy == EnergyHigh {
		eveningQuality = "moderate"
	}

	return TimeBlocks{
		Morning:   Block{Hours: roundHalf(hours * split[0]), Quality: morningQuality},
		Afternoon: Block{Hours: roundHalf(hours * split[1]), Quality: "moderate"},
		Evening:   Block{Hours: roundHalf(hours * split[2]), Quality: eveningQuality},
	}
}
