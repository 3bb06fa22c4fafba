package models

// CalendarEvent is a scheduled hearing or deadline.
type CalendarEvent struct {
	ID            int      `json:"id"`
	DatetimeStart string   `json:"datetime_start"`
	CaseID        *int     `json:"case_id,omitempty"`
	Head          string   `json:"head"`
	SecondLine    string   `json:"second_line"`
	ThirdLine     string   `json:"third_line,omitempty"`
	IsSou         FlexBool `json:"is_sou"`
}

// DelayItem is a postponement record; available on paid tariffs only.
type DelayItem struct {
	ID            int    `json:"id"`
	DatetimeStart string `json:"datetime_start"`
	DatetimeEnd   string `json:"datetime_end"`
	DelayUpdate   string `json:"delay_update"`
	Head          string `json:"head"`
	SecondLine    string `json:"second_line"`
	DelayText     string `json:"delay_text"`
}

// Tariff describes the user's subscription plan.
type Tariff struct {
	Active bool         `json:"active"`
	Header string       `json:"header,omitempty"`
	Text   string       `json:"text,omitempty"`
	Plans  []TariffPlan `json:"tarifs,omitempty"`
}

type TariffPlan struct {
	Name  string     `json:"name"`
	Price FlexString `json:"price"`
	Month FlexString `json:"month"`
}

// Envelope is the common {message, data} response wrapper. Data is nil when
// the backend omits it.
type Envelope[T any] struct {
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
}
