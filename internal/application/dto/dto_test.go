package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/utils"
)

const alertPayload = `{
  "version": "4",
  "groupKey": "{}:{alertname=\"TestAlert\"}",
  "truncatedAlerts": 0,
  "status": "firing",
  "receiver": "webhook",
  "groupLabels": {},
  "commonLabels": {"alertname": "TestAlert", "severity": "critical"},
  "commonAnnotations": {"summary": "Something is broken"},
  "externalURL": "http://localhost:9093",
  "alerts": []
}`

func TestFormatMessage(t *testing.T) {
	var w AlertmanagerWebhook
	require.NoError(t, json.Unmarshal([]byte(alertPayload), &w))
	assert.Equal(t, "FIRING: TestAlert (critical) - Something is broken", w.FormatMessage())
}

func TestFormatMessage_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		webhook AlertmanagerWebhook
		want    string
	}{
		{
			name:    "empty",
			webhook: AlertmanagerWebhook{Status: "resolved"},
			want:    "RESOLVED: Unknown Alert (unknown) - No summary",
		},
		{
			name: "description when no summary",
			webhook: AlertmanagerWebhook{
				Status:            "firing",
				CommonLabels:      map[string]string{"alertname": "X"},
				CommonAnnotations: map[string]string{"description": "desc", "message": "msg"},
			},
			want: "FIRING: X (unknown) - desc",
		},
		{
			name: "message last",
			webhook: AlertmanagerWebhook{
				Status:            "firing",
				CommonLabels:      map[string]string{"severity": "warning"},
				CommonAnnotations: map[string]string{"message": "msg"},
			},
			want: "FIRING: Unknown Alert (warning) - msg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.webhook.FormatMessage())
		})
	}
}

func TestListSMSQuery_Defaults(t *testing.T) {
	params, err := ListSMSQuery{}.ToListParams()
	require.Nil(t, err)
	assert.Equal(t, models.DefaultListParams(), params)
}

func TestListSMSQuery_Parse(t *testing.T) {
	params, err := ListSMSQuery{
		Count:           "5",
		Ascending:       "true",
		UnreadPreferred: "1",
		BoxType:         "local-sent",
		SortBy:          "1",
	}.ToListParams()
	require.Nil(t, err)
	assert.Equal(t, 5, params.ReadCount)
	assert.True(t, params.Ascending)
	assert.True(t, params.UnreadPreferred)
	assert.Equal(t, models.BoxLocalSent, params.BoxType)
	assert.Equal(t, models.SortByPhone, params.SortType)
}

func TestListSMSQuery_Invalid(t *testing.T) {
	for _, q := range []ListSMSQuery{
		{Count: "-1"},
		{Count: "abc"},
		{Ascending: "maybe"},
		{BoxType: "nowhere"},
		{SortBy: "99"},
	} {
		_, err := q.ToListParams()
		require.NotNil(t, err, "%+v", q)
		assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	}
}

func TestSendSMSRequest_Validation(t *testing.T) {
	assert.Nil(t, utils.ValidateStruct(&SendSMSRequest{To: "+420123456789", Message: "hi"}))

	err := utils.ValidateStruct(&SendSMSRequest{To: "not a phone", Message: ""})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "to")
	assert.Contains(t, err.Error(), "message")
}

func TestNewListSMSResponse_NilMessages(t *testing.T) {
	resp := NewListSMSResponse(&models.ListResult{Count: 3})
	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","count":3,"messages":[]}`, string(body))
}
