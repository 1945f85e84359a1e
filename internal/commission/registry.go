package commission

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Registry maps agent names to plans. The zero value serves the default plan for everyone.
type Registry struct {
	plans map[string]Plan
}

// NewRegistry validates every plan and indexes them by normalized agent name.
func NewRegistry(plans map[string]Plan) (*Registry, error) {
	indexed := make(map[string]Plan, len(plans))
	var err error
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := normalizeAgentName(name)
		if key == "" {
			err = multierr.Append(err, fmt.Errorf("%w: empty agent name", ErrInvalidPlan))
			continue
		}
		plan := plans[name]
		if perr := plan.Validate(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("plan %q: %w", name, perr))
			continue
		}
		if _, dup := indexed[key]; dup {
			err = multierr.Append(err, fmt.Errorf("%w: duplicate plan for %q", ErrInvalidPlan, name))
			continue
		}
		indexed[key] = plan
	}
	if err != nil {
		return nil, err
	}
	return &Registry{plans: indexed}, nil
}

// DefaultRegistry has no named plans; every lookup returns the default plan.
func DefaultRegistry() *Registry {
	return &Registry{plans: map[string]Plan{}}
}

// LoadRegistryFile reads a JSON object of agent name to plan. An empty path yields DefaultRegistry.
func LoadRegistryFile(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRegistry(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	var plans map[string]Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, fmt.Errorf("decode plans file %s: %w", path, err)
	}
	return NewRegistry(plans)
}

// Lookup returns the agent's plan or the default plan. It never fails.
func (r *Registry) Lookup(agentName string) Plan {
	if r == nil {
		return DefaultPlan()
	}
	if plan, ok := r.plans[normalizeAgentName(agentName)]; ok {
		return plan
	}
	return DefaultPlan()
}

// Has reports whether a named plan exists for the agent.
func (r *Registry) Has(agentName string) bool {
	if r == nil {
		return false
	}
	_, ok := r.plans[normalizeAgentName(agentName)]
	return ok
}

// Len is the number of named plans.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.plans)
}

func normalizeAgentName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
