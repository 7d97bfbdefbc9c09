package model

import "time"

// Board is a Trello board as returned by the REST API.
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
}

// List is a named column of cards on a board.
type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

// Member is a board member.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Label is an opaque passthrough of a Trello card label.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Card is a Trello card with the fields the reporting pipeline needs.
// PluginData carries the Power-Up key-value records attached to the card.
type Card struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	URL        string       `json:"url"`
	ShortURL   string       `json:"shortUrl"`
	BoardID    string       `json:"idBoard"`
	ListID     string       `json:"idList"`
	MemberIDs  []string     `json:"idMembers"`
	Labels     []Label      `json:"labels"`
	Closed     bool         `json:"closed"`
	PluginData []PluginData `json:"pluginData"`
}

// PluginData is one Power-Up storage record on a card. Value is a
// JSON-encoded string owned by the Power-Up that wrote it.
type PluginData struct {
	ID       string `json:"id"`
	IDPlugin string `json:"idPlugin"`
	Scope    string `json:"scope"`
	Value    string `json:"value"`
}

// TimeEntry is one raw logged record as stored in a card's Power-Up
// payload. Hours and Minutes are kept separate in storage; Date is an
// ISO-8601 string. MemberID and Username are optional metadata.
type TimeEntry struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	Hours       int    `json:"hours"`
	Minutes     int    `json:"minutes"`
	Description string `json:"description,omitempty"`
	MemberID    string `json:"memberId,omitempty"`
	Username    string `json:"username,omitempty"`
}

// Entry is a normalized time entry: hours folded into one decimal value,
// the date parsed, the description defaulted. Derived, never persisted.
type Entry struct {
	MemberID string
	Date     time.Time
	Hours    float64
	Comment  string
}

// ProcessedCard is a card with its normalized time data, ready for
// filtering and aggregation.
type ProcessedCard struct {
	CardID         string
	CardName       string
	CardURL        string
	ListID         string
	MemberIDs      []string
	Labels         []Label
	EstimatedHours float64
	Entries        []Entry
}

// TotalHours sums the card's normalized entry hours.
func (c ProcessedCard) TotalHours() float64 {
	var total float64
	for _, e := range c.Entries {
		total += e.Hours
	}
	return total
}

// HasLabel reports whether the card carries the label with the given id.
func (c ProcessedCard) HasLabel(labelID string) bool {
	for _, l := range c.Labels {
		if l.ID == labelID {
			return true
		}
	}
	return false
}

// BoardSnapshot is one joined fetch of everything the reporting pipeline
// needs from a board. Any of the slices may be empty.
type BoardSnapshot struct {
	Board   Board
	Cards   []Card
	Lists   []List
	Members []Member
	Labels  []Label
}

// ListName resolves a list id to its name, falling back to the id itself.
func (s BoardSnapshot) ListName(listID string) string {
	for _, l := range s.Lists {
		if l.ID == listID {
			return l.Name
		}
	}
	return listID
}

// MemberName resolves a member id to a display name, falling back to the
// id itself. The empty id resolves to "unassigned".
func (s BoardSnapshot) MemberName(memberID string) string {
	if memberID == "" {
		return "unassigned"
	}
	for _, m := range s.Members {
		if m.ID == memberID {
			if m.FullName != "" {
				return m.FullName
			}
			return m.Username
		}
	}
	return memberID
}

// ActiveTimer is the locally persisted state of a running card timer.
type ActiveTimer struct {
	CardID   string    `json:"card_id"`
	CardName string    `json:"card_name"`
	BoardID  string    `json:"board_id"`
	MemberID string    `json:"member_id,omitempty"`
	Comment  string    `json:"comment,omitempty"`
	Start    time.Time `json:"start"`
}
