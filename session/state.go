package session

import "errors"

// State is the lifecycle position of a refresh session.
type State uint8

const (
	// StateIssued is a root session that has not been rotated from.
	StateIssued State = iota + 1
	// StateActive is a session produced by rotation.
	StateActive
	// StateRevoked is terminal: the session was archived.
	StateRevoked
	// StateLoggedOut is terminal: the session was logged out.
	StateLoggedOut
	// StateExpired means the store no longer holds the record.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateActive:
		return "active"
	case StateRevoked:
		return "revoked"
	case StateLoggedOut:
		return "logged_out"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool {
	return s == StateRevoked || s == StateLoggedOut || s == StateExpired
}

// Event drives a [State] transition.
type Event uint8

const (
	EventRefresh Event = iota + 1
	EventArchive
	EventLogout
	EventTTL
)

func (e Event) String() string {
	switch e {
	case EventRefresh:
		return "refresh"
	case EventArchive:
		return "archive"
	case EventLogout:
		return "logout"
	case EventTTL:
		return "ttl"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyUsed rejects events on revoked or logged-out sessions.
	ErrAlreadyUsed = errors.New("session already used")
	// ErrExpired rejects events on sessions the store no longer holds.
	ErrExpired = errors.New("session expired")
)

type transition struct {
	next State
	err  error
}

var transitions = map[State]map[Event]transition{
	StateIssued: {
		EventRefresh: {next: StateIssued},
		EventArchive: {next: StateRevoked},
		EventLogout:  {next: StateLoggedOut},
		EventTTL:     {next: StateExpired},
	},
	StateActive: {
		EventRefresh: {next: StateActive},
		EventArchive: {next: StateRevoked},
		EventLogout:  {next: StateLoggedOut},
		EventTTL:     {next: StateExpired},
	},
	StateRevoked: {
		EventRefresh: {err: ErrAlreadyUsed},
		EventArchive: {err: ErrAlreadyUsed},
		EventLogout:  {err: ErrAlreadyUsed},
		EventTTL:     {next: StateExpired},
	},
	StateLoggedOut: {
		EventRefresh: {err: ErrAlreadyUsed},
		EventArchive: {err: ErrAlreadyUsed},
		EventLogout:  {err: ErrAlreadyUsed},
		EventTTL:     {next: StateExpired},
	},
	StateExpired: {
		EventRefresh: {err: ErrExpired},
		EventArchive: {err: ErrExpired},
		EventLogout:  {err: ErrExpired},
		EventTTL:     {next: StateExpired},
	},
}

// Next returns the state reached by applying ev to s. A Refresh leaves the
// parent in place; the spawned child starts in StateActive.
func Next(s State, ev Event) (State, error) {
	row, ok := transitions[s]
	if !ok {
		return 0, errors.New("session: unknown state")
	}
	t, ok := row[ev]
	if !ok {
		return 0, errors.New("session: unknown event")
	}
	if t.err != nil {
		return s, t.err
	}
	return t.next, nil
}

// StateOf derives the state of a stored record from its flags. rooted
// reports whether the record's envelope has no parent. A nil record is
// expired.
func StateOf(r *Record, rooted bool) State {
	switch {
	case r == nil:
		return StateExpired
	case r.IsLoggedOut:
		return StateLoggedOut
	case r.IsRevoked:
		return StateRevoked
	case rooted:
		return StateIssued
	default:
		return StateActive
	}
}
