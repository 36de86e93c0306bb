package domain

import "time"

// Role classifies what a person did on a project.
type Role string

const (
	RoleNarrator      Role = "narrator"
	RoleSpeakerMale   Role = "speaker_male"
	RoleSpeakerFemale Role = "speaker_female"
	RoleSpeaker       Role = "speaker"
	RoleProjectOwner  Role = "project_owner"
)

// Label returns the human-readable role name used in reports.
func (r Role) Label() string {
	switch r {
	case RoleNarrator:
		return "Narrator"
	case RoleSpeakerMale:
		return "Speaker (Male)"
	case RoleSpeakerFemale:
		return "Speaker (Female)"
	case RoleProjectOwner:
		return "Project Owner"
	default:
		return "Speaker"
	}
}

// Member is a person assigned to a project.
type Member struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// Project is one board card, read-only for the duration of a report run.
type Project struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url,omitempty"`
	List         string     `json:"list,omitempty"`
	Due          *time.Time `json:"due,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	Description  string     `json:"description,omitempty"`
	Labels       []string   `json:"labels,omitempty"`
	Members      []Member   `json:"members,omitempty"`
	Owner        string     `json:"owner,omitempty"`
	DocLinks     []string   `json:"doc_links,omitempty"`
}

// CacheKey is the identity used for the duration cache: the stable card
// id when present, else the card URL, else the card name.
func (p Project) CacheKey() string {
	if p.ID != "" {
		return p.ID
	}
	if p.URL != "" {
		return p.URL
	}
	return p.Name
}

// PaymentEntry is one computed payment row. Amount is nil when the
// project's duration could not be resolved; the row is still emitted so
// the rendering layer can flag it for manual review.
type PaymentEntry struct {
	Person  string   `json:"person"`
	Project string   `json:"project"`
	Role    Role     `json:"role"`
	Minutes *int     `json:"minutes,omitempty"`
	Rate    float64  `json:"rate"`
	Amount  *float64 `json:"amount,omitempty"`
}

// ProjectPayment is the computed breakdown for one eligible project.
// Total is nil when any entry amount is absent: an incomplete project
// never reports a partial sum.
type ProjectPayment struct {
	Project Project        `json:"project"`
	Minutes *int           `json:"minutes,omitempty"`
	Entries []PaymentEntry `json:"entries"`
	Total   *float64       `json:"total,omitempty"`
}

// Complete reports whether every entry carries an amount.
func (p ProjectPayment) Complete() bool {
	return p.Total != nil
}

// MonthlySummary rolls up per-person amounts for one calendar month of
// project due dates. Person totals are best-effort sums over present
// amounts only, even when a contributing project's own total is absent.
type MonthlySummary struct {
	Month    string             `json:"month"`
	Totals   map[string]float64 `json:"totals"`
	Projects []string           `json:"projects"`
}
