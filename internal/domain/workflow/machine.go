package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a transition may fire. Guards read their
// input (transfer proof, rejection reason) from the context, see WithInput.
type GuardFunc func(ctx context.Context) bool

// StateMachine tracks the current state and validates transitions.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger has at least one configured
	// transition from the current state. Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state if permitted.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current state.
	PermittedTriggers() []Trigger
}

// Builder assembles a state machine configuration.
type Builder struct {
	configs map[State]*stateConfig
}

// StateConfiguration configures the outgoing transitions of one state.
type StateConfiguration struct {
	config *stateConfig
}

type transition struct {
	to    State
	guard GuardFunc
}

type stateConfig struct {
	from        State
	transitions map[Trigger][]transition
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() *Builder {
	return &Builder{configs: make(map[State]*stateConfig)}
}

// Configure returns the configuration for the given state, creating it
// on first use.
func (b *Builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	cfg, ok := b.configs[state]
	if !ok {
		cfg = &stateConfig{from: state, transitions: make(map[Trigger][]transition)}
		b.configs[state] = cfg
	}
	return StateConfiguration{config: cfg}
}

// Permit allows the trigger to move to the target state unconditionally.
func (c StateConfiguration) Permit(trigger Trigger, to State) StateConfiguration {
	return c.PermitIf(trigger, to, nil)
}

// PermitIf allows the trigger to move to the target state when the guard passes.
func (c StateConfiguration) PermitIf(trigger Trigger, to State, guard GuardFunc) StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	c.config.transitions[trigger] = append(c.config.transitions[trigger], transition{to: to, guard: guard})
	return c
}

// Build creates a machine positioned at the given initial state. The
// configuration is copied so later Builder mutations do not leak in.
func (b *Builder) Build(initial State) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}

	configs := make(map[State]*stateConfig, len(b.configs))
	for state, cfg := range b.configs {
		tc := make(map[Trigger][]transition, len(cfg.transitions))
		for trig, ts := range cfg.transitions {
			tc[trig] = append([]transition(nil), ts...)
		}
		configs[state] = &stateConfig{from: state, transitions: tc}
	}

	return &machine{current: initial, configs: configs}
}

type machine struct {
	current State
	configs map[State]*stateConfig
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	cfg, ok := m.configs[m.current]
	if !ok {
		return false
	}
	return len(cfg.transitions[trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	cfg, ok := m.configs[m.current]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	transitions := cfg.transitions[trigger]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from %s", ErrGuardFailed, trigger, m.current)
}

func (m *machine) PermittedTriggers() []Trigger {
	cfg, ok := m.configs[m.current]
	if !ok {
		return []Trigger{}
	}
	triggers := make([]Trigger, 0, len(cfg.transitions))
	for trig := range cfg.transitions {
		triggers = append(triggers, trig)
	}
	return triggers
}
