package models

import "encoding/json"

// CaseDetail is the full card of a case. Party lists and instance history
// come in several shapes and are kept raw.
type CaseDetail struct {
	ID             int             `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Value          string          `json:"value,omitempty"`
	Status         string          `json:"status,omitempty"`
	StatusKind     string          `json:"status_kind,omitempty"`
	IsSou          FlexBool        `json:"is_sou,omitempty"`
	Type           string          `json:"type,omitempty"`
	Kind           string          `json:"kind,omitempty"`
	Courts         string          `json:"courts,omitempty"`
	Link           string          `json:"link,omitempty"`
	CardLink       string          `json:"card-link,omitempty"`
	CaseDuration   string          `json:"case-dur,omitempty"`
	StartedDate    string          `json:"started-date,omitempty"`
	CaseDate       string          `json:"case-date,omitempty"`
	AddedDate      string          `json:"added_date,omitempty"`
	Category       string          `json:"category,omitempty"`
	Sides          json.RawMessage `json:"sides,omitempty"`
	SidePl         json.RawMessage `json:"side_pl,omitempty"`
	SideDf         json.RawMessage `json:"side_df,omitempty"`
	Plaintiffs     string          `json:"plaintiffs,omitempty"`
	Defendants     string          `json:"defendants,omitempty"`
	Third          string          `json:"third,omitempty"`
	Others         string          `json:"others,omitempty"`
	NearestSession *NearestSession `json:"nearest_session,omitempty"`
	ShortInfo      *ShortInfo      `json:"short_info,omitempty"`
	Instances      json.RawMessage `json:"instances,omitempty"`
	Judge          string          `json:"judge,omitempty"`
	CourtName      string          `json:"court_name,omitempty"`
}

type NearestSession struct {
	Date    string `json:"date,omitempty"`
	Judge   string `json:"judge,omitempty"`
	Cabinet string `json:"cabinet,omitempty"`
}

type ShortInfo struct {
	CaseNumber  string `json:"case,omitempty"`
	Court       string `json:"court,omitempty"`
	Judge       string `json:"judge,omitempty"`
	HearingDate string `json:"hearingDate,omitempty"`
}
