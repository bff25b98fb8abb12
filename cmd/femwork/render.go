package main

import (
	"fmt"
	"strings"

	"femwork/internal/app"
	"femwork/internal/cycle"
	"femwork/internal/engine"
	"femwork/internal/metrics"
	"femwork/internal/shared"
	"femwork/internal/task"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1)
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderPhase(p *app.PhaseStatus, patterns *cycle.Patterns) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", titleStyle.Render(fmt.Sprintf("Day %d · %s", p.CycleDay, p.Phase)), dimStyle.Render(p.Description))
	if p.Profile == nil {
		sb.WriteString(warnStyle.Render("No cycle set. Run: femwork cycle set YYYY-MM-DD") + "\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "cycle %d days · period %d days · started %s\n",
		p.Profile.CycleLengthDays, p.Profile.PeriodLengthDays, shared.FormatDay(p.Profile.StartDate))
	if patterns != nil {
		regular := "irregular"
		if patterns.Regular {
			regular = "regular"
		}
		fmt.Fprintf(&sb, "over %d periods: avg cycle %d days, avg period %d days (%s)\n",
			patterns.TotalPeriods, patterns.AvgCycleLength, patterns.AvgPeriodLength, regular)
	}
	return sb.String()
}

func renderCheckIn(res *app.CheckInResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s day %d, %s · energy %s · brain %s\n", okStyle.Render("✓ checked in:"),
		res.Record.CycleDay, res.Record.Phase, res.Record.Energy, res.Record.BrainState)
	if res.Impossible {
		sb.WriteString(warnStyle.Render("Today is a rest day. Only the bare minimum matters.") + "\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "capacity: %d tasks, ~%.1fh focus · %s\n", res.Capacity.TaskCount, res.Capacity.FocusHours, res.Capacity.Tier.Message())
	return sb.String()
}

func renderPlan(plan *app.DayPlan) string {
	var sb strings.Builder
	header := fmt.Sprintf("%s · day %d, %s", plan.Date, plan.Phase.CycleDay, plan.Phase.Phase)
	sb.WriteString(boxStyle.Render(titleStyle.Render(header)+"\n"+plan.Insight.Text) + "\n")

	if plan.Impossible {
		sb.WriteString(warnStyle.Render("Bare minimum today:") + "\n")
		for _, t := range plan.BareMinimum {
			fmt.Fprintf(&sb, "  • %s\n", t.Name)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d of %d done · %s\n", plan.CompletedToday, plan.Capacity.TaskCount, plan.Capacity.Tier)
	tb := plan.TimeBlocks
	sb.WriteString(dimStyle.Render(fmt.Sprintf("morning %.1fh %s · afternoon %.1fh %s · evening %.1fh %s",
		tb.Morning.Hours, tb.Morning.Quality, tb.Afternoon.Hours, tb.Afternoon.Quality, tb.Evening.Hours, tb.Evening.Quality)) + "\n\n")

	if len(plan.Tasks) == 0 {
		sb.WriteString("No open tasks. Add one with: femwork task add <name>\n")
		return sb.String()
	}
	for i, t := range plan.Tasks {
		fmt.Fprintf(&sb, "%d. %s %s%s %s\n", i+1, idStyle.Render(shortID(t.ID)), t.Name, dueSuffix(t.DaysUntilDue),
			dimStyle.Render(fmt.Sprintf("(%d)", t.PriorityScore)))
	}
	if more := plan.OpenTasks - len(plan.Tasks); more > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("+%d more for another day", more)) + "\n")
	}
	return sb.String()
}

func dueSuffix(days *int) string {
	switch {
	case days == nil:
		return ""
	case *days == 0:
		return warnStyle.Render(" due today")
	case *days == 1:
		return warnStyle.Render(" due tomorrow")
	}
	return fmt.Sprintf(" due in %d days", *days)
}

func renderNext(res *engine.PickResult) string {
	if res.Task == nil {
		return res.Reason + "\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", titleStyle.Render("→"), res.Task.Name, idStyle.Render(shortID(res.Task.ID)))
	sb.WriteString(dimStyle.Render(res.Reason) + "\n")
	for _, alt := range res.Alternatives {
		fmt.Fprintf(&sb, "  or %s %s\n", alt.Task.Name, idStyle.Render(shortID(alt.Task.ID)))
	}
	return sb.String()
}

func renderTaskLine(t task.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s]", idStyle.Render(shortID(t.ID)), t.Name, t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&sb, " due %s", shared.FormatDay(*t.DueDate))
	}
	if p, ok := engine.NextMicroTask(t.MicroTasks); ok {
		fmt.Fprintf(&sb, " %s", dimStyle.Render(p.Progress))
	}
	if t.Completed {
		sb.WriteString(okStyle.Render(" ✓"))
	}
	return sb.String()
}

func renderTasks(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks.\n"
	}
	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(renderTaskLine(t) + "\n")
	}
	return sb.String()
}

func renderCompletion(res *app.CompletionResult) string {
	return fmt.Sprintf("%s %s\n%s\n", okStyle.Render(res.Celebration), res.Task.Name, dimStyle.Render(res.Progress))
}

func renderStep(res *app.StepResult) string {
	if res.Completion != nil {
		return okStyle.Render("✓ ") + res.Step + "\n" + renderCompletion(res.Completion)
	}
	if res.Step == "" {
		return "All steps are already done.\n"
	}
	s := fmt.Sprintf("%s%s %s\n", okStyle.Render("✓ "), res.Step, dimStyle.Render(res.Progress.Progress))
	if res.Progress.Next != nil {
		s += "next: " + res.Progress.Next.Text + "\n"
	}
	return s
}

func renderSteps(t *task.Task, source string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(t.Name) + " " + idStyle.Render(shortID(t.ID)) + "\n")
	for i, m := range t.MicroTasks {
		mark := "○"
		if m.Completed {
			mark = okStyle.Render("●")
		}
		fmt.Fprintf(&sb, "  %s %d. %s\n", mark, i+1, m.Text)
	}
	if source != "" {
		sb.WriteString(dimStyle.Render("steps: "+source) + "\n")
	}
	return sb.String()
}

func renderWins(w *app.WinsReport) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("This week") + "\n")
	fmt.Fprintf(&sb, "  %d tasks completed\n  %d days checked in\n  %d high-energy days\n",
		w.TasksCompleted, w.DaysCheckedIn, w.HighEnergyDays)
	fmt.Fprintf(&sb, "  streak %d (best %d)\n", w.Streak.Current, w.Streak.Longest)
	sb.WriteString(w.Message + "\n")
	if w.TasksCompleted == 0 {
		sb.WriteString(dimStyle.Render(w.Encouragement) + "\n")
	}
	return sb.String()
}

func renderBreak(b engine.Break) string {
	return fmt.Sprintf("%s %s\n  %s\n", titleStyle.Render(b.Name), dimStyle.Render(b.Duration), strings.Join(b.Activities, " · "))
}

func renderUsage(usage []metrics.DailyUsage) string {
	if len(usage) == 0 {
		return "No usage recorded.\n"
	}
	var sb strings.Builder
	for _, d := range usage {
		fmt.Fprintf(&sb, "%s  %6d prompt  %6d completion  %4d calls\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
	}
	return sb.String()
}
