package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Submission is a raw survey row as stored by the hosted data service.
// Timestamps are kept as the ISO-8601 text the service returns.
type Submission struct {
	ID            string         `json:"id" yaml:"id"`
	Status        string         `json:"status,omitempty" yaml:"status,omitempty"`
	CompletedAt   string         `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	ReceiptNo     string         `json:"receipt_no,omitempty" yaml:"receipt_no,omitempty"`
	Brand         string         `json:"brand,omitempty" yaml:"brand,omitempty"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Email         string         `json:"email,omitempty" yaml:"email,omitempty"`
	ContactNumber string         `json:"contact_number,omitempty" yaml:"contact_number,omitempty"`
	SurveyData    map[string]any `json:"survey_data,omitempty" yaml:"survey_data,omitempty"`
	TicketStatus  string         `json:"ticket_status,omitempty" yaml:"ticket_status,omitempty"`
}

// Survey payload keys.
const (
	KeyNPS             = "q8_nps"
	KeyNPSComment      = "q8_comment"
	KeyNPSCommentType  = "q8_comment_type"
	KeyFood            = "q7_food"
	KeyFoodComment     = "q7_food_comment"
	KeyService         = "q7_service"
	KeyServiceComment  = "q7_service_comment"
	KeyPrice           = "q7_price"
	KeyPriceComment    = "q7_price_comment"
	KeyEnjoy           = "q1"
	KeyEnjoyComment    = "q1_comment"
	KeyDiscovery       = "q2_choice"
	KeyPreviousVisit   = "q3"
	KeyBranch          = "q3_branch"
	KeyLocation        = "q4"
	KeySpend           = "q6_spend"
	KeyCuisines        = "q9"
	KeyReturnIntention = "q10_return"
	KeyFollowUpdates   = "q10"
)

// UnmarshalJSON decodes a row leniently. Scalar columns of any JSON type are
// rendered as text, so numeric ids and receipt numbers are accepted.
// survey_data may be an object or a JSON-encoded object string; anything
// else leaves it nil.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Submission{
		ID:            rawText(raw["id"]),
		Status:        rawText(raw["status"]),
		CompletedAt:   rawText(raw["completed_at"]),
		CreatedAt:     rawText(raw["created_at"]),
		ReceiptNo:     rawText(raw["receipt_no"]),
		Brand:         rawText(raw["brand"]),
		Name:          rawText(raw["name"]),
		Email:         rawText(raw["email"]),
		ContactNumber: rawText(raw["contact_number"]),
		SurveyData:    rawPayload(raw["survey_data"]),
		TicketStatus:  rawText(raw["ticket_status"]),
	}
	return nil
}

// rawText renders a JSON scalar as text. Numbers keep their literal form;
// null, objects and arrays yield "".
func rawText(m json.RawMessage) string {
	if len(m) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(m))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func rawPayload(m json.RawMessage) map[string]any {
	if len(m) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(m, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case map[string]any:
		return x
	case string:
		var data map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(x)), &data); err != nil {
			return nil
		}
		return data
	}
	return nil
}
