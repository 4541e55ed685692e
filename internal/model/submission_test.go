package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_UnmarshalJSON_Strings(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"a1","status":"completed","completed_at":"2025-06-02T10:00:00+00:00",
		"created_at":"2025-06-02T09:55:00+00:00","receipt_no":"R-1","brand":"Harbor",
		"name":"Ana","email":"ana@example.com","contact_number":"555",
		"survey_data":{"q8_nps":3},"ticket_status":"voc"
	}`), &s))

	assert.Equal(t, Submission{
		ID:            "a1",
		Status:        "completed",
		CompletedAt:   "2025-06-02T10:00:00+00:00",
		CreatedAt:     "2025-06-02T09:55:00+00:00",
		ReceiptNo:     "R-1",
		Brand:         "Harbor",
		Name:          "Ana",
		Email:         "ana@example.com",
		ContactNumber: "555",
		SurveyData:    map[string]any{"q8_nps": float64(3)},
		TicketStatus:  "voc",
	}, s)
}

func TestSubmission_UnmarshalJSON_LenientScalars(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":9007199254740993,"receipt_no":12345,"contact_number":5.5,"brand":false,`+
			`"name":null,"email":{"x":1},"ticket_status":["open"]}`), &s))

	assert.Equal(t, "9007199254740993", s.ID, "large ids keep every digit")
	assert.Equal(t, "12345", s.ReceiptNo)
	assert.Equal(t, "5.5", s.ContactNumber)
	assert.Equal(t, "false", s.Brand)
	assert.Empty(t, s.Name)
	assert.Empty(t, s.Email)
	assert.Empty(t, s.TicketStatus)
}

func TestSubmission_UnmarshalJSON_SurveyData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"object", `{"survey_data":{"q3_branch":"Downtown"}}`, map[string]any{"q3_branch": "Downtown"}},
		{"encoded string", `{"survey_data":" {\"q8_nps\":7} "}`, map[string]any{"q8_nps": float64(7)}},
		{"broken string", `{"survey_data":"{nope"}`, nil},
		{"array", `{"survey_data":[1,2]}`, nil},
		{"null", `{"survey_data":null}`, nil},
		{"absent", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Submission
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.SurveyData)
		})
	}
}

func TestSubmission_UnmarshalJSON_ResetsFields(t *testing.T) {
	s := Submission{ID: "old", Name: "stale"}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"new"}`), &s))
	assert.Equal(t, Submission{ID: "new"}, s)
}

func TestSubmission_UnmarshalJSON_NotObject(t *testing.T) {
	var s Submission
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}
