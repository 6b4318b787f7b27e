package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	goalstore "compass/internal/adapters/storage/goal"
	refstore "compass/internal/adapters/storage/reflection"
	rolestore "compass/internal/adapters/storage/role"
	"compass/internal/application/orchestrators"
	"compass/internal/domain/week"
)

// Manager owns the session's collections and the lifecycle of week plans:
// one plan exists per entered week, created on entry and replaced on
// re-entry. It also holds the process-lifetime carry-forward marker, so a
// week is carried into at most once per process; the marker is ephemeral
// and re-running after a restart is safe because carry dedupes.
type Manager struct {
	roles     *RoleList
	goalStore goalstore.Store
	refStore  refstore.Store

	mu      sync.Mutex
	plans   map[string]*WeekPlan
	carried map[string]bool

	newID func() string
	now   func() time.Time
}

// NewManager creates a session manager over the given stores.
func NewManager(roleStore rolestore.Store, goalStore goalstore.Store, refStore refstore.Store) *Manager {
	return &Manager{
		roles:     NewRoleList(roleStore),
		goalStore: goalStore,
		refStore:  refStore,
		plans:     map[string]*WeekPlan{},
		carried:   map[string]bool{},
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
	}
}

// Roles returns the session's role list.
func (m *Manager) Roles() *RoleList { return m.roles }

// EnterResult is what entering a week hands the caller.
type EnterResult struct {
	Plan           *WeekPlan
	CarriedGoals   int  // recurring goals carried in on this entry
	PromptCloseout bool // the prior week is still open
}

// EnterWeek loads (or reuses) the plan for a week. Entering the current
// week additionally runs recurring carry-forward once per process and
// checks whether the prior week still needs closing out; both are best
// effort and never fail the entry.
// PRE: weekKey is a valid week key
// POST: The returned plan is loaded
func (m *Manager) EnterWeek(ctx context.Context, weekKey string) (EnterResult, error) {
	if !week.IsKey(weekKey) {
		return EnterResult{}, week.ErrInvalidKey
	}
	res := EnterResult{}
	if weekKey == week.Key(m.now()) {
		res.CarriedGoals = m.carryOnce(ctx, weekKey)
		res.PromptCloseout = orchestrators.ShouldPromptCloseout(ctx, m.refStore, weekKey)
	}

	plan, err := m.planFor(weekKey)
	if err != nil {
		return EnterResult{}, err
	}
	if err := plan.Load(ctx); err != nil {
		return EnterResult{}, err
	}
	res.Plan = plan
	return res, nil
}

// LeaveWeek discards the plan for a week, ending its ownership of the
// in-memory goal collection.
func (m *Manager) LeaveWeek(weekKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, weekKey)
}

// carryOnce runs carry-forward for the week unless it already ran this
// process. Failures are logged and swallowed; a partial run is retried on
// the next entry because the marker is only set on success.
func (m *Manager) carryOnce(ctx context.Context, weekKey string) int {
	m.mu.Lock()
	done := m.carried[weekKey]
	m.mu.Unlock()
	if done {
		return 0
	}

	carried, err := orchestrators.ExecuteCarryForward(ctx,
		orchestrators.CarryForwardInput{TargetWeek: weekKey},
		orchestrators.CarryForwardDeps{GoalStore: m.goalStore, NewID: m.newID, Now: m.now})
	if err != nil {
		slog.Warn("carry_forward_failed", "week", weekKey, "error", err.Error())
		return carried
	}

	m.mu.Lock()
	m.carried[weekKey] = true
	m.mu.Unlock()
	return carried
}

func (m *Manager) planFor(weekKey string) (*WeekPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan, ok := m.plans[weekKey]; ok {
		return plan, nil
	}
	plan, err := NewWeekPlan(weekKey, m.goalStore, m.refStore)
	if err != nil {
		return nil, err
	}
	plan.newID = m.newID
	plan.now = m.now
	m.plans[weekKey] = plan
	return plan, nil
}
