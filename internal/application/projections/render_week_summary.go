package projections

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"compass/internal/adapters/rowstore"
	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
	roledomain "compass/internal/domain/role"
	"compass/internal/domain/week"
)

// WeekSummaryRoleStore defines the role store interface for the summary.
type WeekSummaryRoleStore interface {
	List(ctx context.Context) ([]roledomain.Role, error)
}

// WeekSummaryGoalStore defines the goal store interface for the summary.
type WeekSummaryGoalStore interface {
	ListByWeek(ctx context.Context, weekStartDate string) ([]goaldomain.WeeklyGoal, error)
}

// WeekSummaryReflectionStore defines the reflection store interface for the summary.
type WeekSummaryReflectionStore interface {
	GetByWeek(ctx context.Context, weekStartDate string) (refdomain.WeeklyReflection, error)
}

// WeekSummaryDeps holds dependencies for RenderWeekSummary.
type WeekSummaryDeps struct {
	RoleStore       WeekSummaryRoleStore
	GoalStore       WeekSummaryGoalStore
	ReflectionStore WeekSummaryReflectionStore
}

var markdown = goldmark.New()

// RenderWeekSummary renders one week's plan as a standalone HTML document:
// goals grouped by role in role sort order, goal notes and reflection text
// rendered as markdown. A missing reflection is fine (the week is open);
// goals whose role no longer exists land in an "Unassigned" group.
// PRE: weekStartDate is a valid week key
// POST: Returns a complete HTML page
func RenderWeekSummary(ctx context.Context, weekStartDate string, deps WeekSummaryDeps) (string, error) {
	start, err := week.ParseKey(weekStartDate)
	if err != nil {
		return "", err
	}

	goals, err := deps.GoalStore.ListByWeek(ctx, weekStartDate)
	if err != nil {
		return "", fmt.Errorf("week summary %s: %w", weekStartDate, err)
	}
	roles, err := deps.RoleStore.List(ctx)
	if err != nil {
		return "", fmt.Errorf("week summary %s: %w", weekStartDate, err)
	}

	var reflection *refdomain.WeeklyReflection
	r, err := deps.ReflectionStore.GetByWeek(ctx, weekStartDate)
	switch {
	case err == nil:
		reflection = &r
	case errors.Is(err, rowstore.ErrNotFound):
		// open week, no reflection section
	default:
		return "", fmt.Errorf("week summary %s: %w", weekStartDate, err)
	}

	sort.SliceStable(roles, func(i, j int) bool { return roles[i].SortOrder < roles[j].SortOrder })
	byRole := map[string][]goaldomain.WeeklyGoal{}
	for _, g := range goals {
		byRole[g.RoleID] = append(byRole[g.RoleID], g)
	}

	var b strings.Builder
	label := week.RangeLabel(start)
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Week of %s</title></head>\n<body>\n", html.EscapeString(label))
	fmt.Fprintf(&b, "<h1>Week of %s</h1>\n", html.EscapeString(label))

	seen := map[string]bool{}
	for _, role := range roles {
		renderRoleSection(&b, role.Name, byRole[role.ID])
		seen[role.ID] = true
	}
	var orphans []goaldomain.WeeklyGoal
	for _, g := range goals {
		if !seen[g.RoleID] {
			orphans = append(orphans, g)
		}
	}
	renderRoleSection(&b, "Unassigned", orphans)

	if reflection != nil {
		b.WriteString("<h2>Reflection</h2>\n")
		if reflection.WeekRating != nil {
			fmt.Fprintf(&b, "<p>Week rating: %d/5</p>\n", *reflection.WeekRating)
		}
		renderMarkdownSection(&b, "What went well", reflection.WentWell)
		renderMarkdownSection(&b, "What didn't go well", reflection.DidntGoWell)
		renderMarkdownSection(&b, "Intentions for next week", reflection.Intentions)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func renderRoleSection(b *strings.Builder, name string, goals []goaldomain.WeeklyGoal) {
	if len(goals) == 0 {
		return
	}
	fmt.Fprintf(b, "<h2>%s</h2>\n<ul>\n", html.EscapeString(name))
	for _, g := range goals {
		mark := "&#9744;" // empty checkbox
		if g.IsComplete() {
			mark = "&#9745;"
		}
		fmt.Fprintf(b, "<li>%s %s <em>(Q%d, %s)</em>", mark, html.EscapeString(g.GoalText), g.Quadrant, html.EscapeString(string(g.Status)))
		if g.Notes != "" {
			b.WriteString(renderMarkdown(g.Notes))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
}

func renderMarkdownSection(b *strings.Builder, title, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "<h3>%s</h3>\n%s", html.EscapeString(title), renderMarkdown(text))
}

func renderMarkdown(src string) string {
	var out bytes.Buffer
	if err := markdown.Convert([]byte(src), &out); err != nil {
		// goldmark does not fail on malformed input; fall back to escaped text
		return "<p>" + html.EscapeString(src) + "</p>\n"
	}
	return out.String()
}
