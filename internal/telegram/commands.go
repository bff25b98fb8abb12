package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"femwork/internal/engine"
	"femwork/internal/shared"
	"femwork/internal/task"
)

// parseAddArgs reads "/add" arguments: a name with optional "!high",
// "!medium", "!low" and "due:YYYY-MM-DD" tokens anywhere.
func parseAddArgs(args string, loc *time.Location) (task.NewTask, error) {
	var (
		in   task.NewTask
		name []string
	)
	for _, f := range strings.Fields(args) {
		switch {
		case strings.HasPrefix(f, "!"):
			p, err := engine.ParsePriority(f[1:])
			if err != nil {
				return in, err
			}
			in.Priority = p
		case strings.HasPrefix(strings.ToLower(f), "due:"):
			d, err := shared.ParseDay(f[len("due:"):], loc)
			if err != nil {
				return in, err
			}
			in.DueDate = &d
		default:
			name = append(name, f)
		}
	}
	in.Name = strings.Join(name, " ")
	if in.Name == "" {
		return in, errors.New("usage: /add <name> [!high|!low] [due:YYYY-MM-DD]")
	}
	return in, nil
}

// parseCycleArgs reads "/cycle YYYY-MM-DD [length] [period]". Omitted
// lengths stay zero.
func parseCycleArgs(args string, loc *time.Location) (engine.CycleProfile, error) {
	var p engine.CycleProfile
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 3 {
		return p, errors.New("usage: /cycle YYYY-MM-DD [cycle length] [period length]")
	}

	start, err := shared.ParseDay(fields[0], loc)
	if err != nil {
		return p, err
	}
	p.StartDate = start

	lengths := []*int{&p.CycleLengthDays, &p.PeriodLengthDays}
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return p, fmt.Errorf("%q is not a number of days", f)
		}
		*lengths[i] = n
	}
	return p, nil
}

// splitCommand separates "/cmd@bot args" into "cmd" and "args".
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ = strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func isURL(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
