package lifecycle

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// target is the subject a plan runs against. Per-account plans carry the
// account key pair; clinic plans only the clinic id.
type target struct {
	clinicID  uuid.UUID
	accountID *uuid.UUID
	email     string

	// filled by the lookup_client_record step
	clientIDs []uuid.UUID
}

type stepFunc func(tx *gorm.DB, t *target) (int64, error)

// step is one row of an ordering table: a named mutation and the steps that
// must have run before it.
type step struct {
	name  string
	after []string
	run   stepFunc
}

type plan struct {
	name  string
	steps []step
}

// newPlan orders steps by their dependencies. It panics on a malformed
// table so a bad edit fails at start-up.
func newPlan(name string, steps ...step) plan {
	ordered, err := orderSteps(steps)
	if err != nil {
		panic(fmt.Sprintf("lifecycle: plan %q: %v", name, err))
	}
	return plan{name: name, steps: ordered}
}

// orderSteps is a Kahn topological sort that keeps declaration order among
// steps whose dependencies are satisfied.
func orderSteps(steps []step) ([]step, error) {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if _, dup := index[s.name]; dup {
			return nil, fmt.Errorf("duplicate step %q", s.name)
		}
		index[s.name] = i
	}

	indegree := make([]int, len(steps))
	dependents := make([][]int, len(steps))
	for i, s := range steps {
		for _, dep := range s.after {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]step, 0, len(steps))
	done := make([]bool, len(steps))
	for len(ordered) < len(steps) {
		next := -1
		for i := range steps {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("dependency cycle among %d remaining steps", len(steps)-len(ordered))
		}
		done[next] = true
		ordered = append(ordered, steps[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return ordered, nil
}

func (p plan) run(tx *gorm.DB, t *target, report *Report, log *slog.Logger) error {
	for _, s := range p.steps {
		n, err := s.run(tx, t)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", p.name, s.name, err)
		}
		report.record(p.name+"."+s.name, n)
		log.Debug("step completed", "plan", p.name, "step", s.name, "rows", n)
	}
	return nil
}

// names returns the step names in execution order.
func (p plan) names() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.name
	}
	return out
}

// allBefore returns the names of every step in sets, for a step that must
// run last.
func allBefore(sets ...[]step) []string {
	var out []string
	for _, set := range sets {
		for _, s := range set {
			out = append(out, s.name)
		}
	}
	return out
}

func concat(sets ...[]step) []step {
	var out []step
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
