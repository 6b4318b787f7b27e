package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"compass/internal/adapters/email"
	goaldomain "compass/internal/domain/goal"
	"compass/internal/domain/week"
)

// ReminderGoalStore is the goal store slice the reminder needs.
type ReminderGoalStore interface {
	ListByWeek(ctx context.Context, weekStartDate string) ([]goaldomain.WeeklyGoal, error)
}

// ReminderDeps holds dependencies for ExecuteReminder.
type ReminderDeps struct {
	GoalStore       ReminderGoalStore
	ReflectionStore CloseoutReflectionStore
	Sender          email.Sender
	To              []string
	From            string
	Now             func() time.Time // injectable for testing
}

// NextFire computes when a standard 5-field cron expression next fires
// after the given time.
// PRE: spec is a valid cron expression, e.g. "0 9 * * 1"
// POST: Returns the next fire time, strictly after `after`
func NextFire(spec string, after time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("reminder schedule %q: %w", spec, err)
	}
	return sched.Next(after), nil
}

// ExecuteReminder emails the week's still-incomplete important-not-urgent
// goals, plus a nudge if the prior week was never closed out. When the
// week holds no incomplete quadrant-2 goals and no nudge is due, nothing
// is sent. Reminders are best effort; the caller logs and moves on.
func ExecuteReminder(ctx context.Context, deps ReminderDeps) error {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	weekKey := week.Key(now)

	goals, err := deps.GoalStore.ListByWeek(ctx, weekKey)
	if err != nil {
		return fmt.Errorf("reminder: load week %s: %w", weekKey, err)
	}
	var pending []goaldomain.WeeklyGoal
	for _, g := range goals {
		if g.Quadrant == goaldomain.QuadrantNotUrgentImportant && !g.IsComplete() {
			pending = append(pending, g)
		}
	}
	nudge := ShouldPromptCloseout(ctx, deps.ReflectionStore, weekKey)

	if len(pending) == 0 && !nudge {
		slog.Info("reminder_skipped", "week", weekKey)
		return nil
	}

	subject, body := buildReminderEmail(now, pending, nudge)
	if _, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      deps.To,
		From:    deps.From,
		Subject: subject,
		HTML:    body,
	}); err != nil {
		return fmt.Errorf("reminder: %w", err)
	}
	slog.Info("reminder_sent", "week", weekKey, "pending_goals", len(pending), "closeout_nudge", nudge)
	return nil
}

// buildReminderEmail renders the reminder subject and HTML body.
func buildReminderEmail(now time.Time, pending []goaldomain.WeeklyGoal, nudge bool) (subject, body string) {
	label := week.RangeLabel(now)
	subject = fmt.Sprintf("Weekly planner: %d important goals still open", len(pending))
	if len(pending) == 0 {
		subject = "Weekly planner: last week is still open"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Week of %s</h2>", html.EscapeString(label))
	if len(pending) > 0 {
		b.WriteString("<p>Important-but-not-urgent goals still open this week:</p><ul>")
		for _, g := range pending {
			fmt.Fprintf(&b, "<li>%s (%s)</li>", html.EscapeString(g.GoalText), html.EscapeString(string(g.Status)))
		}
		b.WriteString("</ul>")
	}
	if nudge {
		b.WriteString("<p>Last week has no reflection yet. Take a minute to close it out.</p>")
	}
	return subject, b.String()
}
