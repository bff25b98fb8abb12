// Package insight produces the daily coaching sentence and task breakdowns.
// A language model is used when one is configured; every path has a static
// fallback so callers never see a model failure.
package insight

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"femwork/internal/engine"
	"femwork/internal/llm"
	"femwork/internal/shared"

	"go.uber.org/zap"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"

	insightAgent   = "DailyInsight"
	breakdownAgent = "TaskBreakdown"

	maxSteps = 10
)

var (
	//go:embed insight_prompt.md
	insightPrompt string
	//go:embed breakdown_prompt.md
	breakdownPrompt string

	insightTmpl   = template.Must(template.New("insight").Parse(insightPrompt))
	breakdownTmpl = template.Must(template.New("breakdown").Parse(breakdownPrompt))
)

// Service generates insights and breakdowns.
type Service struct {
	textGen llm.TextGenerator
	logger  *zap.Logger
}

// NewService creates a Service. textGen may be nil, in which case every call
// returns fallback content.
func NewService(textGen llm.TextGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{textGen: textGen, logger: logger}
}

// Request describes the day an insight is written for.
type Request struct {
	CycleDay   int
	Phase      engine.Phase
	Energy     engine.Energy
	BrainState engine.BrainState
	Mood       string
	Capacity   int
	OpenTasks  int
}

// Insight is one coaching sentence and where it came from.
type Insight struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// DailyInsight asks the model for a short insight. Any failure yields the
// fixed sentence for the phase and energy.
func (s *Service) DailyInsight(ctx context.Context, req Request) (Insight, shared.AgentMeta) {
	meta := shared.AgentMeta{AgentName: insightAgent}
	fallback := Insight{Text: FallbackInsight(req.Phase, req.Energy), Source: SourceFallback}
	if s.textGen == nil {
		meta.Fallback = true
		return fallback, meta
	}

	start := time.Now()
	var out struct {
		Insight string `json:"insight"`
	}
	usage, err := s.generate(ctx, insightTmpl, req, &out)
	meta.Usage = usage
	meta.Latency = time.Since(start)

	text := strings.TrimSpace(out.Insight)
	if err == nil && text == "" {
		err = errors.New("empty insight")
	}
	if err != nil {
		s.logger.Warn("daily insight failed, using fallback",
			zap.String("phase", string(req.Phase)), zap.Error(err))
		meta.Fallback = true
		return fallback, meta
	}
	return Insight{Text: text, Source: SourceModel}, meta
}

// BreakdownRequest describes a task to split into steps.
type BreakdownRequest struct {
	TaskName string
	Phase    engine.Phase
	Priority engine.Priority
	DueDate  *time.Time
}

// Breakdown is an ordered list of micro-steps.
type Breakdown struct {
	Steps  []string `json:"steps"`
	Source string   `json:"source"`
}

type breakdownPromptData struct {
	TaskName string
	Phase    engine.Phase
	Priority engine.Priority
	Deadline string
	Guidance string
	MinSteps int
	MaxSteps int
}

// Breakdown asks the model to split a task into steps sized for the phase.
// Any failure yields keyword-based template steps.
func (s *Service) Breakdown(ctx context.Context, req BreakdownRequest) (Breakdown, shared.AgentMeta) {
	meta := shared.AgentMeta{AgentName: breakdownAgent}
	fallback := Breakdown{Steps: TemplateSteps(req.TaskName), Source: SourceFallback}
	if s.textGen == nil {
		meta.Fallback = true
		return fallback, meta
	}

	size := StepRangeFor(req.Phase)
	data := breakdownPromptData{
		TaskName: req.TaskName,
		Phase:    req.Phase,
		Priority: req.Priority,
		Guidance: size.Guidance,
		MinSteps: size.Min,
		MaxSteps: size.Max,
	}
	if req.DueDate != nil {
		data.Deadline = shared.FormatDay(*req.DueDate)
	}

	start := time.Now()
	var out struct {
		Steps []string `json:"steps"`
	}
	usage, err := s.generate(ctx, breakdownTmpl, data, &out)
	meta.Usage = usage
	meta.Latency = time.Since(start)

	steps := cleanSteps(out.Steps)
	if err == nil && len(steps) == 0 {
		err = errors.New("no steps returned")
	}
	if err != nil {
		s.logger.Warn("task breakdown failed, using templates",
			zap.String("task", req.TaskName), zap.Error(err))
		meta.Fallback = true
		return fallback, meta
	}
	return Breakdown{Steps: steps, Source: SourceModel}, meta
}

func (s *Service) generate(ctx context.Context, tmpl *template.Template, data any, out any) (shared.TokenUsage, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return shared.TokenUsage{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	resp, err := s.textGen.GenerateContent(ctx, buf.String())
	if err != nil {
		return shared.TokenUsage{}, err
	}
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Content)), out); err != nil {
		return resp.Usage, fmt.Errorf("failed to parse model response: %w. Response: %s", err, resp.Content)
	}
	return resp.Usage, nil
}

func cleanSteps(raw []string) []string {
	var steps []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
		if len(steps) == maxSteps {
			break
		}
	}
	return steps
}
