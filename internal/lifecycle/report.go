package lifecycle

import "github.com/google/uuid"

// State is a position in the clinic teardown state machine:
// start -> enumerated -> per_account_processed -> tenant_scoped_cleaned ->
// sweep_completed -> committed, with aborted reachable from any state.
type State string

const (
	StateStart               State = "start"
	StateEnumerated          State = "enumerated"
	StatePerAccountProcessed State = "per_account_processed"
	StateTenantScopedCleaned State = "tenant_scoped_cleaned"
	StateSweepCompleted      State = "sweep_completed"
	StateCommitted           State = "committed"
	StateAborted             State = "aborted"
)

var transitions = map[State]State{
	StateStart:               StateEnumerated,
	StateEnumerated:          StatePerAccountProcessed,
	StatePerAccountProcessed: StateTenantScopedCleaned,
	StateTenantScopedCleaned: StateSweepCompleted,
	StateSweepCompleted:      StateCommitted,
}

// Report describes what a teardown did. Rows maps plan.step to affected rows.
type Report struct {
	ClinicID uuid.UUID        `json:"clinic_id"`
	State    State            `json:"state"`
	Accounts int              `json:"accounts"`
	Rows     map[string]int64 `json:"rows"`
}

func newReport(clinicID uuid.UUID) *Report {
	return &Report{ClinicID: clinicID, State: StateStart, Rows: make(map[string]int64)}
}

func (r *Report) record(key string, n int64) {
	r.Rows[key] += n
}

// advance moves to the next state. It reports false if the report is not in
// a state that can advance.
func (r *Report) advance() bool {
	next, ok := transitions[r.State]
	if !ok {
		return false
	}
	r.State = next
	return true
}

func (r *Report) abort() {
	r.State = StateAborted
}
