package model

import "time"

// UnknownBranch labels responses with no branch or brand tag.
const UnknownBranch = "Unknown"

// TicketStatus is the follow-up workflow tag on a response.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusVOC        TicketStatus = "voc"
	StatusInactive   TicketStatus = "inactive"
)

// TicketStatuses lists the vocabulary in display order.
var TicketStatuses = []TicketStatus{
	StatusOpen, StatusInProgress, StatusResolved, StatusVOC, StatusInactive,
}

// Valid reports whether s belongs to the status vocabulary.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusVOC, StatusInactive:
		return true
	}
	return false
}

// ParseTicketStatus converts user input into a TicketStatus.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	ts := TicketStatus(s)
	return ts, ts.Valid()
}

// Response is the canonical, normalized view of one survey submission.
type Response struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Receipt     string     `json:"receipt"`
	Branch      string     `json:"branch"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`

	NPS            *int   `json:"nps"`
	NPSComment     string `json:"nps_comment"`
	NPSCommentType string `json:"nps_comment_type"`

	Food           *int   `json:"food"`
	FoodComment    string `json:"food_comment"`
	Service        *int   `json:"service"`
	ServiceComment string `json:"service_comment"`
	Price          *int   `json:"price"`
	PriceComment   string `json:"price_comment"`

	EnjoyExperience string `json:"enjoy_experience"`
	EnjoyComment    string `json:"enjoy_comment"`
	Discovery       string `json:"discovery"`
	PreviousVisit   string `json:"previous_visit"`
	Location        string `json:"location"`
	Spend           string `json:"spend"`
	Cuisines        string `json:"cuisines"`
	ReturnIntention string `json:"return_intention"`
	FollowUpdates   string `json:"follow_updates"`

	TicketStatus TicketStatus `json:"ticket_status"`
}

// HasScore reports whether the response carries an NPS answer.
func (r Response) HasScore() bool {
	return r.NPS != nil
}
