package telegram

import (
	"fmt"
	"strings"

	"femwork/internal/app"
	"femwork/internal/engine"
	"femwork/internal/metrics"
	"femwork/internal/shared"
	"femwork/internal/task"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🌙 *femwork*
Plan your day around your cycle and energy.

/checkin - how are you today?
/today - your plan for the day
/next - the one thing to do now
/add <name> [!high|!low] [due:YYYY-MM-DD] - add a task
/tasks - open tasks
/done <id> - complete a task
/step <id> - complete the next step of a task
/breakdown <id> - split a task into steps
/cycle YYYY-MM-DD [length] [period] - set your cycle
/wins - this week's wins
/break - suggest a break

Send a link to import a checklist as a task.`

// esc escapes user text for Telegram's legacy Markdown mode.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatPhase(p *app.PhaseStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌙 *Day %d - %s phase*\n_%s_", p.CycleDay, p.Phase, p.Description)
	if p.Profile == nil {
		sb.WriteString("\n\nNo cycle set yet. Use /cycle YYYY-MM-DD to set your last period start.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n\nCycle: %d days, period %d days, started %s",
		p.Profile.CycleLengthDays, p.Profile.PeriodLengthDays, shared.FormatDay(p.Profile.StartDate))
	return sb.String()
}

func formatCheckIn(res *app.CheckInResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *Checked in* - day %d, %s\n", res.Record.CycleDay, res.Record.Phase)
	fmt.Fprintf(&sb, "Energy: %s • Brain: %s\n\n", res.Record.Energy, res.Record.BrainState)
	if res.Impossible {
		sb.WriteString("💛 *Today is a rest day.* Only the bare minimum matters.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "🎯 Capacity: *%d tasks* (~%.1fh focus)\n_%s_\n",
		res.Capacity.TaskCount, res.Capacity.FocusHours, res.Capacity.Tier.Message())
	return sb.String()
}

func formatPlan(plan *app.DayPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s* - day %d, %s\n", plan.Date, plan.Phase.CycleDay, plan.Phase.Phase)
	fmt.Fprintf(&sb, "_%s_\n\n", esc(plan.Insight.Text))

	if plan.Impossible {
		sb.WriteString("💛 *Bare minimum today*\n")
		for _, t := range plan.BareMinimum {
			fmt.Fprintf(&sb, "• %s\n", esc(t.Name))
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "🎯 *%d of %d done* (%s)\n", plan.CompletedToday, plan.Capacity.TaskCount, plan.Capacity.Tier)
	tb := plan.TimeBlocks
	fmt.Fprintf(&sb, "⏱ Morning %.1fh (%s) • Afternoon %.1fh (%s) • Evening %.1fh (%s)\n\n",
		tb.Morning.Hours, tb.Morning.Quality,
		tb.Afternoon.Hours, tb.Afternoon.Quality,
		tb.Evening.Hours, tb.Evening.Quality)

	if len(plan.Tasks) == 0 {
		sb.WriteString("No open tasks. Add one with /add.\n")
		return sb.String()
	}
	sb.WriteString("*Focus on:*\n")
	for i, t := range plan.Tasks {
		fmt.Fprintf(&sb, "%d. %s%s `%s`\n", i+1, esc(t.Name), dueSuffix(t.DaysUntilDue), shortID(t.ID))
	}
	if more := plan.OpenTasks - len(plan.Tasks); more > 0 {
		fmt.Fprintf(&sb, "_+%d more for another day_\n", more)
	}
	return sb.String()
}

func dueSuffix(days *int) string {
	switch {
	case days == nil:
		return ""
	case *days == 0:
		return " ⏰ today"
	case *days == 1:
		return " ⏰ tomorrow"
	}
	return fmt.Sprintf(" (in %d days)", *days)
}

func formatNext(res *engine.PickResult) string {
	if res.Task == nil {
		return "✨ " + res.Reason
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👉 *Do this next:* %s `%s`\n_%s_\n", esc(res.Task.Name), shortID(res.Task.ID), res.Reason)
	if len(res.Alternatives) > 0 {
		sb.WriteString("\nOr:\n")
		for _, alt := range res.Alternatives {
			fmt.Fprintf(&sb, "• %s `%s`\n", esc(alt.Task.Name), shortID(alt.Task.ID))
		}
	}
	return sb.String()
}

func formatTasks(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No open tasks. Add one with /add."
	}
	var sb strings.Builder
	sb.WriteString("📝 *Open tasks*\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "• `%s` %s [%s]", shortID(t.ID), esc(t.Name), t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(&sb, " due %s", shared.FormatDay(*t.DueDate))
		}
		if p, ok := engine.NextMicroTask(t.MicroTasks); ok {
			fmt.Fprintf(&sb, " (%s)", p.Progress)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatTaskAdded(t *task.Task) string {
	s := fmt.Sprintf("➕ Added *%s* [%s] `%s`", esc(t.Name), t.Priority, shortID(t.ID))
	if t.DueDate != nil {
		s += " due " + shared.FormatDay(*t.DueDate)
	}
	if n := len(t.MicroTasks); n > 0 {
		s += fmt.Sprintf("\n%d steps", n)
	}
	return s
}

func formatCompletion(res *app.CompletionResult) string {
	return fmt.Sprintf("%s\n*%s* is done.\n%s", res.Celebration, esc(res.Task.Name), res.Progress)
}

func formatStep(res *app.StepResult) string {
	if res.Completion != nil {
		return fmt.Sprintf("☑️ %s\n\n%s", esc(res.Step), formatCompletion(res.Completion))
	}
	if res.Step == "" {
		return fmt.Sprintf("All steps of *%s* are already done.", esc(res.Task.Name))
	}
	s := fmt.Sprintf("☑️ %s (%s)", esc(res.Step), res.Progress.Progress)
	if res.Progress.Next != nil {
		s += "\nNext: " + esc(res.Progress.Next.Text)
	}
	return s
}

func formatSteps(t *task.Task, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧩 *%s*\n", esc(t.Name))
	for i, m := range t.MicroTasks {
		mark := "▫️"
		if m.Completed {
			mark = "☑️"
		}
		fmt.Fprintf(&sb, "%s %d. %s\n", mark, i+1, esc(m.Text))
	}
	if source != "" {
		fmt.Fprintf(&sb, "_steps: %s_", source)
	}
	return sb.String()
}

func formatWins(w *app.WinsReport) string {
	var sb strings.Builder
	sb.WriteString("🏆 *This week*\n")
	fmt.Fprintf(&sb, "• %d tasks completed\n", w.TasksCompleted)
	fmt.Fprintf(&sb, "• %d days checked in\n", w.DaysCheckedIn)
	fmt.Fprintf(&sb, "• %d high-energy days\n", w.HighEnergyDays)
	fmt.Fprintf(&sb, "🔥 Streak: %d (best %d)\n\n", w.Streak.Current, w.Streak.Longest)
	sb.WriteString(w.Message)
	if w.TasksCompleted == 0 {
		fmt.Fprintf(&sb, "\n_%s_", w.Encouragement)
	}
	return sb.String()
}

func formatBreak(b engine.Break) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "☕ *%s* (%s)\n", b.Name, b.Duration)
	for _, a := range b.Activities {
		fmt.Fprintf(&sb, "• %s\n", a)
	}
	return sb.String()
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}
