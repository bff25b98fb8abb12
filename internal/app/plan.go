package app

import (
	"context"
	"fmt"

	"femwork/internal/checkin"
	"femwork/internal/engine"
	"femwork/internal/insight"
	"femwork/internal/task"
)

// DayPlan is everything the "today" view shows.
type DayPlan struct {
	Date             string                 `json:"date"`
	Phase            engine.PhaseInfo       `json:"phase"`
	PhaseDescription string                 `json:"phase_description"`
	CheckIn          checkin.Record         `json:"check_in"`
	Capacity         engine.CapacityResult  `json:"capacity"`
	Impossible       bool                   `json:"impossible"`
	Tasks            []engine.ScoredTask    `json:"tasks"`
	BareMinimum      []engine.TaskCandidate `json:"bare_minimum,omitempty"`
	TimeBlocks       engine.TimeBlocks      `json:"time_blocks"`
	Insight          insight.Insight        `json:"insight"`
	OpenTasks        int                    `json:"open_tasks"`
	CompletedToday   int                    `json:"completed_today"`
	Remaining        int                    `json:"remaining"`
}

type dayState struct {
	checkIn   *checkin.Record
	open      []task.Task
	completed []task.Task
	capacity  engine.CapacityResult
	ranked    []engine.ScoredTask
}

func (a *App) loadDay(ctx context.Context, userID string) (*dayState, error) {
	rec, err := a.TodayCheckIn(ctx, userID)
	if err != nil {
		return nil, err
	}

	now, _ := a.today()
	open, err := a.tasks.ListOpen(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(now)
	completed, err := a.tasks.CompletedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	c := rec.Context()
	capacity := a.engine.Capacity(c)
	return &dayState{
		checkIn:   rec,
		open:      open,
		completed: completed,
		capacity:  capacity,
		ranked:    a.engine.Prioritize(task.Candidates(open, now), c, capacity),
	}, nil
}

// Today builds the day plan. It needs today's check-in.
func (a *App) Today(ctx context.Context, userID string) (*DayPlan, error) {
	st, err := a.loadDay(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, day := a.today()
	c := st.checkIn.Context()

	plan := &DayPlan{
		Date:             day,
		Phase:            engine.PhaseInfo{CycleDay: st.checkIn.CycleDay, Phase: st.checkIn.Phase},
		PhaseDescription: st.checkIn.Phase.Description(),
		CheckIn:          *st.checkIn,
		Capacity:         st.capacity,
		Impossible:       engine.IsImpossibleDay(c),
		Tasks:            st.ranked,
		TimeBlocks:       a.engine.TimeBlocks(c),
		OpenTasks:        len(st.open),
		CompletedToday:   len(st.completed),
		Remaining:        max(st.capacity.TaskCount-len(st.completed), 0),
	}
	if plan.Impossible {
		plan.BareMinimum = engine.BareMinimumTasks()
	}

	in, meta := a.insights.DailyInsight(ctx, insight.Request{
		CycleDay:   st.checkIn.CycleDay,
		Phase:      st.checkIn.Phase,
		Energy:     st.checkIn.Energy,
		BrainState: st.checkIn.BrainState,
		Mood:       st.checkIn.Mood,
		Capacity:   st.capacity.TaskCount,
		OpenTasks:  len(st.open),
	})
	a.recordMeta(ctx, meta)
	plan.Insight = in
	return plan, nil
}

// Next picks the single best task for right now.
func (a *App) Next(ctx context.Context, userID string) (*engine.PickResult, error) {
	st, err := a.loadDay(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(st.ranked) == 0 && len(st.completed) > 0 {
		return &engine.PickResult{Reason: engine.ReasonAllDone}, nil
	}

	now, _ := a.today()
	res := a.engine.PickNext(st.ranked, engine.PickContext{
		CheckIn:        st.checkIn.Context(),
		Hour:           now.Hour(),
		CompletedToday: task.Candidates(st.completed, now),
	})
	return &res, nil
}

// SuggestBreak proposes a break for the switch from the last completed task
// to the next pick.
func (a *App) SuggestBreak(ctx context.Context, userID string) (engine.Break, error) {
	st, err := a.loadDay(ctx, userID)
	if err != nil {
		return engine.Break{}, err
	}

	b := engine.BreakContext{CheckIn: st.checkIn.Context()}
	if n := len(st.completed); n > 0 {
		b.LastType = a.engine.Classify(st.completed[n-1].Name)
	}
	next, err := a.Next(ctx, userID)
	if err != nil {
		return engine.Break{}, fmt.Errorf("failed to pick next task: %w", err)
	}
	if next.Task != nil {
		b.NextType = a.engine.Classify(next.Task.Name)
	}
	return engine.SuggestBreak(b), nil
}
