package domain

type LoadState string

const (
	LoadStateLoading LoadState = "loading"
	LoadStateReady   LoadState = "ready"
)

// Session is the process-wide authentication state. Token is non-empty iff
// Identity is set or a refresh is in flight.
type Session struct {
	Identity  *Identity
	Token     string
	LoadState LoadState
}

// Snapshot is the read-only view handed to consumers. It never carries the
// credential token.
type Snapshot struct {
	Identity  *Identity `json:"identity"`
	LoadState LoadState `json:"load_state"`
}

func (s Session) Snapshot() Snapshot {
	snap := Snapshot{LoadState: s.LoadState}
	if s.Identity != nil {
		id := s.Identity.clone()
		snap.Identity = &id
	}
	return snap
}

func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}
