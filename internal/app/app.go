package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"femwork/internal/celebrate"
	"femwork/internal/checkin"
	"femwork/internal/cycle"
	"femwork/internal/engine"
	"femwork/internal/importer"
	"femwork/internal/insight"
	"femwork/internal/metrics"
	"femwork/internal/shared"
	"femwork/internal/task"

	"go.uber.org/zap"
)

// ErrNoCheckIn is returned by operations that need today's check-in first.
var ErrNoCheckIn = errors.New("no check-in for today")

// Deps are the collaborators an App is built from. Logger, Location, Clock
// and Rand default when nil.
type Deps struct {
	Engine   *engine.Engine
	Cycles   *cycle.Repository
	CheckIns *checkin.Repository
	Tasks    *task.Repository
	Insights *insight.Service
	Importer *importer.Importer
	Metrics  *metrics.Store
	Logger   *zap.Logger
	Location *time.Location
	Clock    func() time.Time
	Rand     celebrate.Rand
}

// App holds the application's dependencies and implements every user-facing
// operation. Surfaces (CLI, bot, API) only translate input and output.
type App struct {
	engine   *engine.Engine
	cycles   *cycle.Repository
	checkIns *checkin.Repository
	tasks    *task.Repository
	insights *insight.Service
	importer *importer.Importer
	metrics  *metrics.Store
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
	rnd      celebrate.Rand
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	a := &App{
		engine:   d.Engine,
		cycles:   d.Cycles,
		checkIns: d.CheckIns,
		tasks:    d.Tasks,
		insights: d.Insights,
		importer: d.Importer,
		metrics:  d.Metrics,
		logger:   d.Logger,
		loc:      d.Location,
		now:      d.Clock,
		rnd:      d.Rand,
	}
	if a.engine == nil {
		a.engine = engine.Default()
	}
	if a.insights == nil {
		a.insights = insight.NewService(nil, d.Logger)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.rnd == nil {
		a.rnd = globalRand{}
	}
	return a
}

// Engine exposes the scoring engine, e.g. for classifying task names.
func (a *App) Engine() *engine.Engine { return a.engine }

// Now is the current time in the user's location.
func (a *App) Now() time.Time { return a.now().In(a.loc) }

// Location is the timezone "today" is decided in.
func (a *App) Location() *time.Location { return a.loc }

func (a *App) today() (time.Time, string) {
	now := a.Now()
	return now, shared.FormatDay(now)
}

// dayBounds is [midnight, next midnight) around t in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := shared.StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

func (a *App) recordMeta(ctx context.Context, meta shared.AgentMeta) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.RecordMeta(ctx, meta); err != nil {
		a.logger.Warn("failed to record metrics", zap.String("agent", meta.AgentName), zap.Error(err))
	}
}
