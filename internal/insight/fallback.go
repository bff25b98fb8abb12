package insight

import (
	"strings"

	"femwork/internal/engine"
)

const defaultInsight = "Listen to your body today. Work with your energy, not against it."

var fallbackInsights = map[engine.Phase]map[engine.Energy]string{
	engine.PhaseMenstrual: {
		engine.EnergyLow:    "Your body is asking for rest today. One or two gentle tasks are plenty. Honor this slower pace.",
		engine.EnergyMedium: "Day 1-5 energy is naturally gentler. Focus on easier tasks and give yourself permission to move slowly.",
		engine.EnergyHigh:   "Even with decent energy, your body is still menstruating. Balance productivity with extra rest today.",
	},
	engine.PhaseFollicular: {
		engine.EnergyLow:    "Follicular phase usually brings energy, but today feels different. Start with one small win to build momentum.",
		engine.EnergyMedium: "Your creative energy is rising. Perfect time for planning and fresh starts. Take advantage of this clarity.",
		engine.EnergyHigh:   "This is your power phase! Great time for new projects, learning, and creative work. Channel this energy wisely.",
	},
	engine.PhaseOvulatory: {
		engine.EnergyLow:    "Peak energy phase but you're feeling low - listen to your body. Even superheroes need rest days.",
		engine.EnergyMedium: "Solid ovulatory energy. Ideal for communication tasks, meetings, and collaborative work.",
		engine.EnergyHigh:   "You're at peak capacity! Perfect time for important meetings, presentations, or challenging work. Make it count.",
	},
	engine.PhaseLuteal: {
		engine.EnergyLow:    "Luteal phase + low energy is your body's signal to slow down. Focus on completion rather than starting new things.",
		engine.EnergyMedium: "Great energy for detail work and finishing projects. Your focus is sharp - use it for editing and refinement.",
		engine.EnergyHigh:   "Strong luteal energy is perfect for organizing, reviewing, and crossing things off your list. Channel it into completion.",
	},
}

// FallbackInsight returns the fixed sentence for a phase and energy level.
func FallbackInsight(phase engine.Phase, energy engine.Energy) string {
	if s, ok := fallbackInsights[phase][energy]; ok {
		return s
	}
	return defaultInsight
}

// StepRange is how many steps a breakdown should have in a phase.
type StepRange struct {
	Min, Max int
	Guidance string
}

// StepRangeFor sizes breakdowns by phase: gentler phases get fewer steps.
func StepRangeFor(phase engine.Phase) StepRange {
	switch phase {
	case engine.PhaseMenstrual:
		return StepRange{3, 4, "Energy is low, so keep steps gentle and minimal."}
	case engine.PhaseOvulatory:
		return StepRange{5, 6, "Energy is at its peak, so steps can be comprehensive."}
	case engine.PhaseLuteal:
		return StepRange{4, 5, "Focus is detail-oriented, so steps should be precise."}
	}
	return StepRange{4, 5, "Creative energy is rising, so steps can be exploratory."}
}

type stepTemplate struct {
	keywords []string
	steps    []string
}

var stepTemplates = []stepTemplate{
	{
		keywords: []string{"instagram", "post"},
		steps: []string{
			"Clarify the goal for this week's posts",
			"Decide how many posts are needed",
			"Choose themes for each post",
			"Select or create visuals",
			"Write captions",
			"Research and choose hashtags",
			"Choose best posting times",
			"Schedule posts",
			"Final review before publishing",
		},
	},
	{
		keywords: []string{"sign up", "register", "account"},
		steps: []string{
			"Check what information is required",
			"Prepare email and password",
			"Complete registration form",
			"Verify email or authentication",
			"Confirm account access",
		},
	},
	{
		keywords: []string{"upload"},
		steps: []string{
			"Prepare files in correct format",
			"Check platform requirements",
			"Upload content",
			"Review uploaded content",
			"Confirm everything is live",
		},
	},
}

var genericSteps = []string{
	"Clarify what needs to be done",
	"Gather any required information",
	"Start with the easiest step",
	"Complete the core work",
	"Review and finish",
}

// TemplateSteps builds steps from keyword templates. Every matching template
// contributes, in order; a name matching none gets the generic steps.
func TemplateSteps(taskName string) []string {
	name := strings.ToLower(taskName)
	var steps []string
	for _, t := range stepTemplates {
		for _, kw := range t.keywords {
			if strings.Contains(name, kw) {
				steps = append(steps, t.steps...)
				break
			}
		}
	}
	if len(steps) == 0 {
		steps = append(steps, genericSteps...)
	}
	return steps
}
