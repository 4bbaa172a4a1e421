package modem

import (
	"encoding/xml"
	"strings"
	"unicode"

	"github.com/turtacn/smsgw/internal/domain/models"
)

const (
	sessionPrefix = "SessionID="
	okMarker      = "<response>OK</response>"
)

// sesTokInfoResponse is the body of GET /api/webserver/SesTokInfo.
type sesTokInfoResponse struct {
	XMLName xml.Name `xml:"response"`
	SesInfo *string  `xml:"SesInfo"`
	TokInfo *string  `xml:"TokInfo"`
}

// errorEnvelope is the device's failure body.
type errorEnvelope struct {
	XMLName xml.Name `xml:"error"`
	Code    int      `xml:"code"`
	Message string   `xml:"message"`
}

// smsListRequest is the body of POST /api/sms/sms-list. Booleans travel as 0/1.
type smsListRequest struct {
	XMLName         xml.Name `xml:"request"`
	PageIndex       int      `xml:"PageIndex"`
	ReadCount       int      `xml:"ReadCount"`
	BoxType         int      `xml:"BoxType"`
	SortType        int      `xml:"SortType"`
	Ascending       int      `xml:"Ascending"`
	UnreadPreferred int      `xml:"UnreadPreferred"`
}

type smsListResponse struct {
	XMLName  xml.Name     `xml:"response"`
	Count    *int         `xml:"Count"`
	Messages *xmlMessages `xml:"Messages"`
}

type xmlMessages struct {
	Message []xmlMessage `xml:"Message"`
}

type xmlMessage struct {
	Smstat   int    `xml:"Smstat"`
	Index    int    `xml:"Index"`
	Phone    string `xml:"Phone"`
	Content  string `xml:"Content"`
	Date     string `xml:"Date"`
	Sca      string `xml:"Sca"`
	SaveType int    `xml:"SaveType"`
	Priority int    `xml:"Priority"`
	SmsType  int    `xml:"SmsType"`
}

// sendSmsRequest is the body of POST /api/sms/send-sms.
type sendSmsRequest struct {
	XMLName  xml.Name  `xml:"request"`
	Index    int       `xml:"Index"`
	Phones   xmlPhones `xml:"Phones"`
	Sca      string    `xml:"Sca"`
	Content  string    `xml:"Content"`
	Length   int       `xml:"Length"`
	Reserved int       `xml:"Reserved"`
	Date     int       `xml:"Date"`
}

type xmlPhones struct {
	Phone []string `xml:"Phone"`
}

func newListRequest(params models.ListParams) smsListRequest {
	return smsListRequest{
		PageIndex:       1,
		ReadCount:       params.ReadCount,
		BoxType:         params.BoxType.Code(),
		SortType:        params.SortType.Code(),
		Ascending:       boolToInt(params.Ascending),
		UnreadPreferred: boolToInt(params.UnreadPreferred),
	}
}

// newSendRequest builds the send body. Length is the character count of content.
func newSendRequest(to, content string) sendSmsRequest {
	return sendSmsRequest{
		Index:    -1,
		Phones:   xmlPhones{Phone: []string{to}},
		Sca:      "",
		Content:  content,
		Length:   len([]rune(content)),
		Reserved: -1,
		Date:     -1,
	}
}

func (m xmlMessage) toModel() models.DeviceMessage {
	return models.DeviceMessage{
		Status:   models.SmsStatFromCode(m.Smstat),
		Index:    m.Index,
		Phone:    m.Phone,
		Content:  m.Content,
		Date:     m.Date,
		Sca:      m.Sca,
		SaveType: m.SaveType,
		Priority: models.PriorityFromCode(m.Priority),
		Type:     models.SmsTypeFromCode(m.SmsType),
	}
}

// marshalRequest renders v with the XML declaration the device web UI sends.
func marshalRequest(v interface{}) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// parseErrorEnvelope returns the device fault carried by body, if any.
func parseErrorEnvelope(body []byte) (*models.DeviceFault, bool) {
	var envelope errorEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return &models.DeviceFault{Code: envelope.Code, Message: envelope.Message}, true
}

// ParseSessionID strips the "SessionID=" prefix from a SesInfo value.
func ParseSessionID(sesInfo string) (string, error) {
	value := strings.TrimSpace(sesInfo)
	if !strings.HasPrefix(value, sessionPrefix) {
		return "", &models.SessionFormatError{Value: sesInfo}
	}
	return strings.TrimPrefix(value, sessionPrefix), nil
}

// StripWhitespace removes every whitespace character, so "+44 7700 900 123" becomes
// "+447700900123".
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
