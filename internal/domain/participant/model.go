package participant

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindTeam       Kind = "team"
	KindIndividual Kind = "individual"
)

// Ref identifies an entrant within one event. It is either a team or an
// individual, never both; the zero value refers to nobody.
type Ref struct {
	kind Kind
	id   string
}

func Team(teamID string) Ref {
	return Ref{kind: KindTeam, id: strings.TrimSpace(teamID)}
}

func Individual(userID string) Ref {
	return Ref{kind: KindIndividual, id: strings.TrimSpace(userID)}
}

// RefFromKeys builds a Ref from the nullable team_id/user_id pair used by
// persistence and request payloads. Exactly one of the two must be set.
func RefFromKeys(teamID, userID string) (Ref, error) {
	teamID = strings.TrimSpace(teamID)
	userID = strings.TrimSpace(userID)
	switch {
	case teamID != "" && userID != "":
		return Ref{}, fmt.Errorf("participant cannot reference both team %q and user %q", teamID, userID)
	case teamID != "":
		return Team(teamID), nil
	case userID != "":
		return Individual(userID), nil
	default:
		return Ref{}, fmt.Errorf("participant reference is empty")
	}
}

// ParseRef is the inverse of Ref.Kind/Ref.ID as stored in the ledger tables.
func ParseRef(kind, id string) (Ref, error) {
	switch Kind(strings.TrimSpace(kind)) {
	case KindTeam:
		return RefFromKeys(id, "")
	case KindIndividual:
		return RefFromKeys("", id)
	default:
		return Ref{}, fmt.Errorf("unknown participant kind %q", kind)
	}
}

func (r Ref) Kind() Kind { return r.kind }

func (r Ref) ID() string { return r.id }

func (r Ref) IsZero() bool { return r.kind == "" || r.id == "" }

func (r Ref) IsTeam() bool { return r.kind == KindTeam && r.id != "" }

func (r Ref) TeamID() string {
	if r.kind != KindTeam {
		return ""
	}
	return r.id
}

func (r Ref) UserID() string {
	if r.kind != KindIndividual {
		return ""
	}
	return r.id
}

// Matches reports whether both refs point at the same entrant. Team refs only
// match team refs and user refs only match user refs; empty refs match nothing.
func (r Ref) Matches(other Ref) bool {
	if r.IsZero() || other.IsZero() {
		return false
	}
	switch r.kind {
	case KindTeam:
		return other.kind == KindTeam && r.id == other.id
	case KindIndividual:
		return other.kind == KindIndividual && r.id == other.id
	default:
		return false
	}
}

// Key is a stable map key for the ref.
func (r Ref) Key() string {
	return string(r.kind) + ":" + r.id
}

func (r Ref) String() string {
	if r.IsZero() {
		return "unresolved"
	}
	return r.Key()
}

type Member struct {
	UserID      string
	DisplayName string
}

// Participant is a registration resolved to its team or individual.
type Participant struct {
	Ref            Ref
	RegistrationID string
	DisplayName    string
	Members        []Member
	RegisteredAt   time.Time
}
