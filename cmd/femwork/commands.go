package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"femwork/internal/api"
	"femwork/internal/app"
	"femwork/internal/database"
	"femwork/internal/engine"
	"femwork/internal/shared"
	"femwork/internal/task"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewDB(cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ ")+"database ready at "+cfg.DatabasePath)
		return nil
	},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Show or set your cycle",
}

var (
	cycleLength  int
	periodLength int
)

var cycleSetCmd = &cobra.Command{
	Use:     "set <YYYY-MM-DD>",
	Short:   "Set the first day of your last period",
	Example: "  femwork cycle set 2024-09-20 --length 30 --period 4",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			start, err := shared.ParseDay(args[0], rt.Location())
			if err != nil {
				return err
			}
			status, err := rt.SetCycle(ctx, userID, engine.CycleProfile{
				StartDate:        start,
				CycleLengthDays:  cycleLength,
				PeriodLengthDays: periodLength,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPhase(status, nil))
			return nil
		})
	},
}

var cycleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's phase and your cycle patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			status, err := rt.CurrentPhase(ctx, userID)
			if err != nil {
				return err
			}
			patterns, err := rt.Patterns(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPhase(status, patterns))
			return nil
		})
	},
}

var (
	energyFlag string
	brainFlag  string
	moodFlag   string
	notesFlag  string
)

var checkinCmd = &cobra.Command{
	Use:     "checkin",
	Short:   "Record how you are today",
	Example: "  femwork checkin --energy medium --brain foggy --mood tired",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		energy, err := engine.ParseEnergy(energyFlag)
		if err != nil {
			return err
		}
		brain, err := engine.ParseBrainState(brainFlag)
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			res, err := rt.CheckIn(ctx, userID, app.CheckInInput{
				Energy:     energy,
				BrainState: brain,
				Mood:       moodFlag,
				Notes:      notesFlag,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCheckIn(res))
			return nil
		})
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			plan, err := rt.Today(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPlan(plan))
			return nil
		})
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Pick the one task to do now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			res, err := rt.Next(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNext(res))
			return nil
		})
	},
}

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks",
}

var (
	priorityFlag string
	dueFlag      string
	stepFlags    []string
	allFlag      bool
)

var taskAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a task",
	Example: `  femwork task add "Email landlord" --priority high --due 2024-10-05 --step "Find lease" --step "Write email"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			in := task.NewTask{Name: strings.Join(args, " "), MicroTasks: stepFlags}
			if priorityFlag != "" {
				p, err := engine.ParsePriority(priorityFlag)
				if err != nil {
					return err
				}
				in.Priority = p
			}
			if dueFlag != "" {
				due, err := shared.ParseDay(dueFlag, rt.Location())
				if err != nil {
					return err
				}
				in.DueDate = &due
			}
			t, err := rt.AddTask(ctx, userID, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ ")+"added "+renderTaskLine(*t))
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			tasks, err := rt.ListTasks(ctx, userID, allFlag)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTasks(tasks))
			return nil
		})
	},
}

var taskDoneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"complete"},
	Short:   "Mark a task as done",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			res, err := rt.CompleteTask(ctx, userID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCompletion(res))
			return nil
		})
	},
}

var taskStepCmd = &cobra.Command{
	Use:   "step <id>",
	Short: "Complete the next step of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			res, err := rt.CompleteStep(ctx, userID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStep(res))
			return nil
		})
	},
}

var taskBreakdownCmd = &cobra.Command{
	Use:   "breakdown <id>",
	Short: "Split a task into steps sized for your phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			res, err := rt.BreakDown(ctx, userID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSteps(res.Task, res.Source))
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Import a web checklist as a task with steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			t, err := rt.ImportChecklist(ctx, userID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSteps(t, ""))
			return nil
		})
	},
}

var winsCmd = &cobra.Command{
	Use:   "wins",
	Short: "Show this week's wins and your check-in streak",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			w, err := rt.WeeklyWins(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderWins(w))
			return nil
		})
	},
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Suggest a break before the next task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			b, err := rt.SuggestBreak(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBreak(b))
			return nil
		})
	},
}

var ttlFlag time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for the user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireAPISecret(); err != nil {
			return err
		}
		token, err := api.IssueToken(cfg.APISecret, userID, ttlFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect model usage metrics",
}

var (
	usageDays int
	keepDays  int
)

var metricsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			usage, err := rt.Metrics.GetDailyUsage(ctx, usageDays)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderUsage(usage))
			return nil
		})
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old metric records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
			affected, err := rt.Metrics.Cleanup(ctx, keepDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
			return nil
		})
	},
}

func init() {
	cycleSetCmd.Flags().IntVar(&cycleLength, "length", 0, "cycle length in days (default 28)")
	cycleSetCmd.Flags().IntVar(&periodLength, "period", 0, "period length in days (default 5)")
	cycleCmd.AddCommand(cycleSetCmd, cycleShowCmd)

	checkinCmd.Flags().StringVarP(&energyFlag, "energy", "e", "", "energy: low, medium or high")
	checkinCmd.Flags().StringVarP(&brainFlag, "brain", "b", "", "brain state: calm, focused, wired, foggy or tender")
	checkinCmd.Flags().StringVar(&moodFlag, "mood", "", "one word for your mood")
	checkinCmd.Flags().StringVar(&notesFlag, "notes", "", "free-form notes")
	_ = checkinCmd.MarkFlagRequired("energy")
	_ = checkinCmd.MarkFlagRequired("brain")

	taskAddCmd.Flags().StringVarP(&priorityFlag, "priority", "p", "", "low, medium or high (default medium)")
	taskAddCmd.Flags().StringVarP(&dueFlag, "due", "d", "", "due date, YYYY-MM-DD")
	taskAddCmd.Flags().StringArrayVarP(&stepFlags, "step", "s", nil, "a micro-task step (repeatable)")
	taskListCmd.Flags().BoolVarP(&allFlag, "all", "a", false, "include completed tasks")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd, taskStepCmd, taskBreakdownCmd)

	tokenCmd.Flags().DurationVar(&ttlFlag, "ttl", 30*24*time.Hour, "token lifetime")

	metricsUsageCmd.Flags().IntVar(&usageDays, "days", 7, "number of days")
	metricsCleanupCmd.Flags().IntVar(&keepDays, "days", 30, "keep records for the last N days")
	metricsCmd.AddCommand(metricsUsageCmd, metricsCleanupCmd)

	rootCmd.AddCommand(migrateCmd, cycleCmd, checkinCmd, todayCmd, nextCmd, taskCmd,
		importCmd, winsCmd, breakCmd, tokenCmd, metricsCmd)
}
