package models

import (
	"encoding/json"
	"regexp"
)

// LegalCase is a monitored court case as returned by the subscriptions list.
type LegalCase struct {
	ID          int             `json:"id"`
	Title       string          `json:"title,omitempty"`
	Value       string          `json:"value,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	IsSouRaw    *FlexBool       `json:"is_sou,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
	Status      string          `json:"status,omitempty"`
	CompanyID   *int            `json:"company_id,omitempty"`
	LastEvent   string          `json:"last_event,omitempty"`
	TotalEvents FlexString      `json:"total_evets,omitempty"`
	Subscribed  bool            `json:"subscribed,omitempty"`
	MutedSide   []string        `json:"muted_side,omitempty"`
	MutedAll    bool            `json:"muted_all,omitempty"`
	New         int             `json:"new,omitempty"`
	Folder      string          `json:"folder,omitempty"`
	Favorites   bool            `json:"favorites,omitempty"`
	CardLink    string          `json:"card-link,omitempty"`
	Link        string          `json:"link,omitempty"`
	SidePl      string          `json:"sidePl,omitempty"`
	SideDf      json.RawMessage `json:"sideDf,omitempty"`
	CourtName   string          `json:"court_name,omitempty"`
	City        string          `json:"city,omitempty"`
}

var (
	arbitrationNumber = regexp.MustCompile(`^[АA]\d+-`)
	generalNumber     = regexp.MustCompile(`^\d+-\d+/\d+`)
)

// IsSou reports whether the case belongs to a court of general jurisdiction.
// An explicit is_sou flag wins; otherwise the case number format decides.
func (c LegalCase) IsSou() bool {
	if c.IsSouRaw != nil {
		return bool(*c.IsSouRaw)
	}
	number := c.Value
	if number == "" {
		number = c.Name
	}
	if number == "" || arbitrationNumber.MatchString(number) {
		return false
	}
	return generalNumber.MatchString(number)
}

func (c LegalCase) DisplayTitle() string {
	switch {
	case c.Value != "":
		return c.Value
	case c.Title != "":
		return c.Title
	case c.Name != "":
		return c.Name
	default:
		return "Без номера"
	}
}

// Company is a monitored organisation.
type Company struct {
	ID          int        `json:"id"`
	Value       string     `json:"value,omitempty"`
	INN         string     `json:"inn,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	LastEvent   string     `json:"last_event,omitempty"`
	TotalCases  FlexString `json:"total_cases,omitempty"`
	New         int        `json:"new,omitempty"`
	Status      string     `json:"status,omitempty"`
	NameCustom  string     `json:"name_custom,omitempty"`
}

func (c Company) DisplayName() string {
	if c.NameCustom != "" {
		return c.NameCustom
	}
	return c.Name
}

type subscriptionsLists struct {
	Cases     []LegalCase `json:"cases"`
	Companies []Company   `json:"companies"`
}

type subscriptionsData struct {
	subscriptionsLists
	Nested *subscriptionsLists `json:"data"`
}

// SubscriptionsResponse is the payload of the subscriptions list. The backend
// has been seen to return cases at the top level, under data and under
// data.data; Cases and Companies pick the first non-empty one.
type SubscriptionsResponse struct {
	Message    string             `json:"message,omitempty"`
	Data       *subscriptionsData `json:"data,omitempty"`
	CasesArray []LegalCase        `json:"cases,omitempty"`
}

func (r SubscriptionsResponse) Cases() []LegalCase {
	if len(r.CasesArray) > 0 {
		return r.CasesArray
	}
	if r.Data == nil {
		return nil
	}
	if len(r.Data.Cases) > 0 {
		return r.Data.Cases
	}
	if r.Data.Nested != nil {
		return r.Data.Nested.Cases
	}
	return nil
}

func (r SubscriptionsResponse) Companies() []Company {
	if r.Data == nil {
		return nil
	}
	if len(r.Data.Companies) > 0 {
		return r.Data.Companies
	}
	if r.Data.Nested != nil {
		return r.Data.Nested.Companies
	}
	return nil
}
