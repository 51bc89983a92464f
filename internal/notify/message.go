package notify

import (
	"encoding/json"
	"time"
)

// PublicationMessage tells the static export tooling that the published
// content of a fiscal year changed and its pages must be rebuilt.
type PublicationMessage struct {
	FiscalYearId int       `json:"fiscal_year_id"`
	Year         int       `json:"year"`
	Status       string    `json:"status"`
	Previous     string    `json:"previous_status"`
	Automatic    bool      `json:"automatic"`
	ChangedAt    time.Time `json:"changed_at"`
}

func (m PublicationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PublicationMessageFromJSON(data []byte) (*PublicationMessage, error) {
	var msg PublicationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
