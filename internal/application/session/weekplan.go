package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"compass/internal/adapters/rowstore"
	goalstore "compass/internal/adapters/storage/goal"
	refstore "compass/internal/adapters/storage/reflection"
	"compass/internal/application/optimistic"
	"compass/internal/application/orchestrators"
	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
	"compass/internal/domain/week"
)

// ErrWeekLocked rejects direct edits to a closed-out week.
var ErrWeekLocked = errors.New("week is locked; undo the closeout first")

// GoalInput is the user-editable part of a goal.
type GoalInput struct {
	RoleID             string
	GoalText           string
	Quadrant           goaldomain.Quadrant
	Notes              string
	Recurring          bool
	RecurringEnds      string
	RecurringRemaining *int
}

// WeekPlan is the session-owned working state of one week: its goal list
// and its reflection. Created on entering a week, discarded on leaving it.
// Lock state is derived from the loaded reflection; direct goal edits and
// status cycling are rejected while locked, copy-to-another-week is not.
type WeekPlan struct {
	weekKey     string
	goals       goalstore.Store
	reflections refstore.Store

	coll *optimistic.Collection[goaldomain.WeeklyGoal]

	mu         sync.RWMutex
	reflection *refdomain.WeeklyReflection

	newID func() string
	now   func() time.Time
}

// NewWeekPlan creates an unloaded plan for the given week key.
func NewWeekPlan(weekKey string, goals goalstore.Store, reflections refstore.Store) (*WeekPlan, error) {
	if !week.IsKey(weekKey) {
		return nil, week.ErrInvalidKey
	}
	return &WeekPlan{
		weekKey:     weekKey,
		goals:       goals,
		reflections: reflections,
		coll:        optimistic.New[goaldomain.WeeklyGoal](),
		newID:       func() string { return uuid.NewString() },
		now:         time.Now,
	}, nil
}

// Week returns the plan's week key.
func (p *WeekPlan) Week() string { return p.weekKey }

// Load replaces local state with the store's contents for this week.
// A missing reflection is normal (the week is open).
func (p *WeekPlan) Load(ctx context.Context) error {
	goals, err := p.goals.ListByWeek(ctx, p.weekKey)
	if err != nil {
		return fmt.Errorf("load week %s: %w", p.weekKey, err)
	}
	p.coll.Replace(goals)

	r, err := p.reflections.GetByWeek(ctx, p.weekKey)
	switch {
	case err == nil:
		p.setReflection(&r)
	case errors.Is(err, rowstore.ErrNotFound):
		p.setReflection(nil)
	default:
		return fmt.Errorf("load week %s: %w", p.weekKey, err)
	}
	return nil
}

// Goals returns the current (possibly optimistic) goal list.
func (p *WeekPlan) Goals() []goaldomain.WeeklyGoal {
	return p.coll.Items()
}

// Goal returns one goal by id.
func (p *WeekPlan) Goal(id string) (goaldomain.WeeklyGoal, error) {
	for _, g := range p.coll.Items() {
		if g.ID == id {
			return g, nil
		}
	}
	return goaldomain.WeeklyGoal{}, fmt.Errorf("goal %q: %w", id, rowstore.ErrNotFound)
}

// Reflection returns the loaded reflection, or nil while the week is open.
func (p *WeekPlan) Reflection() *refdomain.WeeklyReflection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.reflection == nil {
		return nil
	}
	r := *p.reflection
	return &r
}

// IsLocked reports whether this week has been closed out.
func (p *WeekPlan) IsLocked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reflection != nil
}

// AddGoal plans a new goal in this week.
// PRE: input has non-empty text and a valid quadrant
// POST: Returns the created goal, already visible in Goals()
func (p *WeekPlan) AddGoal(ctx context.Context, input GoalInput) (goaldomain.WeeklyGoal, error) {
	if p.IsLocked() {
		return goaldomain.WeeklyGoal{}, ErrWeekLocked
	}
	now := p.now()
	g := goaldomain.WeeklyGoal{
		ID:                 p.newID(),
		WeekStartDate:      p.weekKey,
		RoleID:             input.RoleID,
		GoalText:           input.GoalText,
		Quadrant:           input.Quadrant,
		Status:             goaldomain.StatusNotStarted,
		Notes:              input.Notes,
		Recurring:          input.Recurring,
		RecurringEnds:      input.RecurringEnds,
		RecurringRemaining: input.RecurringRemaining,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := g.Validate(); err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	err := p.coll.Mutate(ctx,
		func(items []goaldomain.WeeklyGoal) []goaldomain.WeeklyGoal { return append(items, g) },
		func(ctx context.Context) error { return p.goals.Add(ctx, g) })
	if err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	return g, nil
}

// UpdateGoal rewrites a goal's editable fields. On a failed commit the
// week is reloaded from the store.
func (p *WeekPlan) UpdateGoal(ctx context.Context, id string, input GoalInput) (goaldomain.WeeklyGoal, error) {
	if p.IsLocked() {
		return goaldomain.WeeklyGoal{}, ErrWeekLocked
	}
	g, err := p.Goal(id)
	if err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	g.RoleID = input.RoleID
	g.GoalText = input.GoalText
	g.Quadrant = input.Quadrant
	g.Notes = input.Notes
	g.Recurring = input.Recurring
	g.RecurringEnds = input.RecurringEnds
	g.RecurringRemaining = input.RecurringRemaining
	g.UpdatedAt = p.now()
	if err := g.Validate(); err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	if err := p.commitUpdate(ctx, g); err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	return g, nil
}

// CycleStatus advances a goal's status one step through the cycle.
func (p *WeekPlan) CycleStatus(ctx context.Context, id string) (goaldomain.WeeklyGoal, error) {
	if p.IsLocked() {
		return goaldomain.WeeklyGoal{}, ErrWeekLocked
	}
	g, err := p.Goal(id)
	if err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	g.Status = g.Status.Next()
	g.UpdatedAt = p.now()
	if err := p.commitUpdate(ctx, g); err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	return g, nil
}

// DeleteGoal removes a goal from this week.
func (p *WeekPlan) DeleteGoal(ctx context.Context, id string) error {
	if p.IsLocked() {
		return ErrWeekLocked
	}
	if _, err := p.Goal(id); err != nil {
		return err
	}
	return p.coll.Mutate(ctx,
		func(items []goaldomain.WeeklyGoal) []goaldomain.WeeklyGoal {
			return removeGoal(items, id)
		},
		func(ctx context.Context) error { return p.goals.Delete(ctx, id) })
}

// MoveToWeek reassigns a goal to another week, keeping its id. Locally the
// goal leaves this plan; remotely it is an in-place update.
func (p *WeekPlan) MoveToWeek(ctx context.Context, id, targetWeek string) error {
	if p.IsLocked() {
		return ErrWeekLocked
	}
	if !week.IsKey(targetWeek) {
		return week.ErrInvalidKey
	}
	g, err := p.Goal(id)
	if err != nil {
		return err
	}
	g.WeekStartDate = targetWeek
	g.UpdatedAt = p.now()
	return p.coll.MutateReload(ctx,
		func(items []goaldomain.WeeklyGoal) []goaldomain.WeeklyGoal {
			return removeGoal(items, id)
		},
		func(ctx context.Context) error { return p.goals.Update(ctx, g) },
		func(ctx context.Context) ([]goaldomain.WeeklyGoal, error) {
			return p.goals.ListByWeek(ctx, p.weekKey)
		})
}

// CopyToWeek clones a goal into another week with a fresh id, keeping
// status and calendar link. Copying out of a locked week is allowed.
func (p *WeekPlan) CopyToWeek(ctx context.Context, id, targetWeek string) (goaldomain.WeeklyGoal, error) {
	if !week.IsKey(targetWeek) {
		return goaldomain.WeeklyGoal{}, week.ErrInvalidKey
	}
	g, err := p.Goal(id)
	if err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	copied := g.CopyTo(p.newID(), targetWeek, p.now())
	if targetWeek == p.weekKey {
		err = p.coll.Mutate(ctx,
			func(items []goaldomain.WeeklyGoal) []goaldomain.WeeklyGoal { return append(items, copied) },
			func(ctx context.Context) error { return p.goals.Add(ctx, copied) })
	} else {
		err = p.goals.Add(ctx, copied)
	}
	if err != nil {
		return goaldomain.WeeklyGoal{}, err
	}
	return copied, nil
}

// CloseOut finalizes this week via the closeout state machine and reloads
// local state, since goals may have moved and the lock flag flipped.
func (p *WeekPlan) CloseOut(ctx context.Context, moveGoalIDs []string, text orchestrators.ReflectionText) error {
	err := orchestrators.ExecuteCloseOut(ctx, orchestrators.CloseOutInput{
		Week:        p.weekKey,
		MoveGoalIDs: moveGoalIDs,
		Reflection:  text,
	}, p.closeoutDeps())
	if reloadErr := p.Load(ctx); reloadErr != nil && err == nil {
		err = reloadErr
	}
	return err
}

// Skip pushes the selected goals forward without locking the week.
func (p *WeekPlan) Skip(ctx context.Context, moveGoalIDs []string) error {
	err := orchestrators.ExecuteSkip(ctx, p.weekKey, moveGoalIDs, p.closeoutDeps())
	if reloadErr := p.Load(ctx); reloadErr != nil && err == nil {
		err = reloadErr
	}
	return err
}

// UndoCloseOut reopens this week by deleting its reflection. Previously
// moved goals stay where they are.
func (p *WeekPlan) UndoCloseOut(ctx context.Context) error {
	if err := orchestrators.ExecuteUndo(ctx, p.weekKey, p.closeoutDeps()); err != nil {
		return err
	}
	p.setReflection(nil)
	return nil
}

func (p *WeekPlan) closeoutDeps() orchestrators.CloseoutDeps {
	return orchestrators.CloseoutDeps{
		GoalStore:       p.goals,
		ReflectionStore: p.reflections,
		NewID:           p.newID,
		Now:             p.now,
	}
}

func (p *WeekPlan) commitUpdate(ctx context.Context, g goaldomain.WeeklyGoal) error {
	return p.coll.MutateReload(ctx,
		func(items []goaldomain.WeeklyGoal) []goaldomain.WeeklyGoal {
			for i := range items {
				if items[i].ID == g.ID {
					items[i] = g
				}
			}
			return items
		},
		func(ctx context.Context) error { return p.goals.Update(ctx, g) },
		func(ctx context.Context) ([]goaldomain.WeeklyGoal, error) {
			return p.goals.ListByWeek(ctx, p.weekKey)
		})
}

func (p *WeekPlan) setReflection(r *refdomain.WeeklyReflection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reflection = r
}

func removeGoal(items []goaldomain.WeeklyGoal, id string) []goaldomain.WeeklyGoal {
	out := items[:0]
	for _, g := range items {
		if g.ID != id {
			out = append(out, g)
		}
	}
	return out
}
