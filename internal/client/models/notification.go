package models

import (
	"encoding/json"
	"strconv"
)

type NotificationType string

const (
	NotificationCompany NotificationType = "company"
	NotificationCase    NotificationType = "case"
)

// UnmarshalJSON maps unknown values to NotificationCase.
func (t *NotificationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = NotificationCase
		return nil
	}
	if NotificationType(s) == NotificationCompany {
		*t = NotificationCompany
	} else {
		*t = NotificationCase
	}
	return nil
}

// Notification is one feed item. IsRead is computed locally from the read
// state; the server flag is only a starting value.
type Notification struct {
	ID            int              `json:"id"`
	TextHeader    string           `json:"text_header"`
	TextSubHeader string           `json:"text_sub_header"`
	Text          string           `json:"text"`
	Type          NotificationType `json:"type"`
	Meta          string           `json:"meta"`
	HasDocument   bool             `json:"has_document"`
	Document      string           `json:"document,omitempty"`
	CaseID        int              `json:"case"`
	CompanyID     *int             `json:"company,omitempty"`
	IsSou         bool             `json:"is_sou"`
	IsRead        bool             `json:"is_read"`
}

// ReadKey identifies the notification for dedup and read tracking.
func (n Notification) ReadKey() string {
	return strconv.Itoa(n.ID) + "|" + strconv.Itoa(n.CaseID) + "|" + n.Meta
}

// SecondaryID is the case id, or the company id for company-only items.
func (n Notification) SecondaryID() int {
	if n.CaseID != 0 || n.CompanyID == nil {
		return n.CaseID
	}
	return *n.CompanyID
}

// NotificationsPage is one page of the feed. Missing page counters default
// to 1 and a missing or malformed data array decodes as empty.
type NotificationsPage struct {
	Message    string         `json:"message,omitempty"`
	Data       []Notification `json:"data"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

func (p *NotificationsPage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Message    string          `json:"message"`
		Data       json.RawMessage `json:"data"`
		Page       *int            `json:"page"`
		TotalPages *int            `json:"total_pages"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.Message = raw.Message
	p.Page, p.TotalPages = 1, 1
	if raw.Page != nil {
		p.Page = *raw.Page
	}
	if raw.TotalPages != nil {
		p.TotalPages = *raw.TotalPages
	}

	p.Data = nil
	if len(raw.Data) > 0 {
		var items []Notification
		if err := json.Unmarshal(raw.Data, &items); err == nil {
			p.Data = items
		}
	}
	return nil
}
