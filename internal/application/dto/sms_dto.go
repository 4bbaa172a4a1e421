// Package dto holds the request and response bodies of the gateway API.
package dto

import (
	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/utils"
)

// SendSMSRequest is the body of POST /send-sms.
type SendSMSRequest struct {
	To      string `json:"to" validate:"required,phone"`
	Message string `json:"message" validate:"required"`
	Client  string `json:"client,omitempty" validate:"omitempty,max=64"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// SendSMSResponse is returned when a message was accepted.
type SendSMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ListSMSResponse is the body of GET /get-sms.
type ListSMSResponse struct {
	Status   string                 `json:"status"`
	Count    int                    `json:"count"`
	Messages []models.DeviceMessage `json:"messages"`
}

// ListSMSQuery holds the raw query parameters of GET /get-sms.
type ListSMSQuery struct {
	Count           string `form:"count"`
	Ascending       string `form:"ascending"`
	UnreadPreferred string `form:"unread_preferred"`
	BoxType         string `form:"box_type"`
	SortBy          string `form:"sort_by"`
}

// ToListParams applies defaults to absent parameters. box_type and sort_by take an
// integer code or a kebab-case name.
func (q ListSMSQuery) ToListParams() (models.ListParams, errors.GatewayError) {
	params := models.DefaultListParams()

	count, err := utils.ParsePositiveInt(q.Count, constants.DefaultListCount)
	if err != nil {
		return params, errors.ErrInvalidRequest("count " + err.Error())
	}
	params.ReadCount = count

	if params.Ascending, err = utils.ParseBoolFlag(q.Ascending, false); err != nil {
		return params, errors.ErrInvalidRequest("ascending " + err.Error())
	}
	if params.UnreadPreferred, err = utils.ParseBoolFlag(q.UnreadPreferred, false); err != nil {
		return params, errors.ErrInvalidRequest("unread_preferred " + err.Error())
	}

	if q.BoxType != "" {
		if params.BoxType, err = models.ParseBoxType(q.BoxType); err != nil {
			return params, errors.ErrInvalidRequest(err.Error())
		}
	}
	if q.SortBy != "" {
		if params.SortType, err = models.ParseSortType(q.SortBy); err != nil {
			return params, errors.ErrInvalidRequest(err.Error())
		}
	}
	return params, nil
}

// NewListSMSResponse wraps a device listing.
func NewListSMSResponse(result *models.ListResult) *ListSMSResponse {
	messages := result.Messages
	if messages == nil {
		messages = []models.DeviceMessage{}
	}
	return &ListSMSResponse{Status: "success", Count: result.Count, Messages: messages}
}
