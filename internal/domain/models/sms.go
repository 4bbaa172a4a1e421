// Package models holds the domain types shared by the device client, the quota ledger
// and the dispatcher.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Session is the credential pair issued by the device. It is fetched for every domain
// operation and never cached.
type Session struct {
	SessionID string
	Token     string
}

// ================================================================================
// Enumerations
// ================================================================================

// BoxType selects the mailbox a list operation reads from.
type BoxType int

const (
	BoxUnknown    BoxType = -1
	BoxLocalInbox BoxType = 1
	BoxLocalSent  BoxType = 2
	BoxLocalDraft BoxType = 3
	BoxLocalTrash BoxType = 4
	BoxSimInbox   BoxType = 5
	BoxSimSent    BoxType = 6
	BoxSimDraft   BoxType = 7
	BoxMixInbox   BoxType = 8
	BoxMixSent    BoxType = 9
	BoxMixDraft   BoxType = 10
)

var boxTypeNames = map[BoxType]string{
	BoxUnknown:    "unknown",
	BoxLocalInbox: "local-inbox",
	BoxLocalSent:  "local-sent",
	BoxLocalDraft: "local-draft",
	BoxLocalTrash: "local-trash",
	BoxSimInbox:   "sim-inbox",
	BoxSimSent:    "sim-sent",
	BoxSimDraft:   "sim-draft",
	BoxMixInbox:   "mix-inbox",
	BoxMixSent:    "mix-sent",
	BoxMixDraft:   "mix-draft",
}

func (b BoxType) String() string {
	if name, ok := boxTypeNames[b]; ok {
		return name
	}
	return boxTypeNames[BoxUnknown]
}

// Code returns the signed integer the device expects on the wire.
func (b BoxType) Code() int { return int(b) }

// BoxTypeFromCode maps a wire code to a BoxType, folding unrecognized codes to BoxUnknown.
func BoxTypeFromCode(code int) BoxType {
	if _, ok := boxTypeNames[BoxType(code)]; ok {
		return BoxType(code)
	}
	return BoxUnknown
}

// ParseBoxType accepts either a kebab-case name ("local-sent") or a wire code ("2").
func ParseBoxType(s string) (BoxType, error) {
	code, err := parseEnum(s, namesOf(boxTypeNames))
	if err != nil {
		return BoxUnknown, fmt.Errorf("invalid box type %q", s)
	}
	b := BoxTypeFromCode(code)
	if b == BoxUnknown {
		return BoxUnknown, fmt.Errorf("invalid box type %q", s)
	}
	return b, nil
}

func (b BoxType) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

func (b *BoxType) UnmarshalJSON(data []byte) error {
	code, err := unmarshalEnum(data, namesOf(boxTypeNames))
	if err != nil {
		return err
	}
	*b = BoxTypeFromCode(code)
	return nil
}

// SortType selects the ordering key of a list operation.
type SortType int

const (
	SortUnknown SortType = -1
	SortByDate  SortType = 0
	SortByPhone SortType = 1
	SortByIndex SortType = 2
)

var sortTypeNames = map[SortType]string{
	SortUnknown: "unknown",
	SortByDate:  "date",
	SortByPhone: "phone",
	SortByIndex: "index",
}

func (s SortType) String() string {
	if name, ok := sortTypeNames[s]; ok {
		return name
	}
	return sortTypeNames[SortUnknown]
}

func (s SortType) Code() int { return int(s) }

func SortTypeFromCode(code int) SortType {
	if _, ok := sortTypeNames[SortType(code)]; ok {
		return SortType(code)
	}
	return SortUnknown
}

// ParseSortType accepts either a name ("phone") or a wire code ("1").
func ParseSortType(s string) (SortType, error) {
	code, err := parseEnum(s, namesOf(sortTypeNames))
	if err != nil {
		return SortUnknown, fmt.Errorf("invalid sort type %q", s)
	}
	st := SortTypeFromCode(code)
	if st == SortUnknown {
		return SortUnknown, fmt.Errorf("invalid sort type %q", s)
	}
	return st, nil
}

func (s SortType) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *SortType) UnmarshalJSON(data []byte) error {
	code, err := unmarshalEnum(data, namesOf(sortTypeNames))
	if err != nil {
		return err
	}
	*s = SortTypeFromCode(code)
	return nil
}

// SmsType is the encoding or report kind of a stored message.
type SmsType int

const (
	SmsTypeUnknown                     SmsType = -1
	SmsTypeSingle                      SmsType = 1
	SmsTypeMultipart                   SmsType = 2
	SmsTypeUnicode                     SmsType = 5
	SmsTypeDeliveryConfirmationSuccess SmsType = 7
	SmsTypeDeliveryConfirmationFailure SmsType = 8
)

var smsTypeNames = map[SmsType]string{
	SmsTypeUnknown:                     "unknown",
	SmsTypeSingle:                      "single",
	SmsTypeMultipart:                   "multipart",
	SmsTypeUnicode:                     "unicode",
	SmsTypeDeliveryConfirmationSuccess: "delivery-confirmation-success",
	SmsTypeDeliveryConfirmationFailure: "delivery-confirmation-failure",
}

func (t SmsType) String() string {
	if name, ok := smsTypeNames[t]; ok {
		return name
	}
	return smsTypeNames[SmsTypeUnknown]
}

func SmsTypeFromCode(code int) SmsType {
	if _, ok := smsTypeNames[SmsType(code)]; ok {
		return SmsType(code)
	}
	return SmsTypeUnknown
}

func (t SmsType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *SmsType) UnmarshalJSON(data []byte) error {
	code, err := unmarshalEnum(data, namesOf(smsTypeNames))
	if err != nil {
		return err
	}
	*t = SmsTypeFromCode(code)
	return nil
}

// Priority of a stored message. The device reports 4 for anything it cannot classify.
type Priority int

const (
	PriorityNormal      Priority = 0
	PriorityInteractive Priority = 1
	PriorityUrgent      Priority = 2
	PriorityEmergency   Priority = 3
	PriorityUnknown     Priority = 4
)

var priorityNames = map[Priority]string{
	PriorityNormal:      "normal",
	PriorityInteractive: "interactive",
	PriorityUrgent:      "urgent",
	PriorityEmergency:   "emergency",
	PriorityUnknown:     "unknown",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return priorityNames[PriorityUnknown]
}

func PriorityFromCode(code int) Priority {
	if _, ok := priorityNames[Priority(code)]; ok {
		return Priority(code)
	}
	return PriorityUnknown
}

func (p Priority) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Priority) UnmarshalJSON(data []byte) error {
	code, err := unmarshalEnum(data, namesOf(priorityNames))
	if err != nil {
		return err
	}
	*p = PriorityFromCode(code)
	return nil
}

// SmsStat is the read state of a stored message.
type SmsStat int

const (
	SmsStatUnknown SmsStat = -1
	SmsStatUnread  SmsStat = 0
	SmsStatRead    SmsStat = 1
)

var smsStatNames = map[SmsStat]string{
	SmsStatUnknown: "unknown",
	SmsStatUnread:  "unread",
	SmsStatRead:    "read",
}

func (s SmsStat) String() string {
	if name, ok := smsStatNames[s]; ok {
		return name
	}
	return smsStatNames[SmsStatUnknown]
}

func SmsStatFromCode(code int) SmsStat {
	if _, ok := smsStatNames[SmsStat(code)]; ok {
		return SmsStat(code)
	}
	return SmsStatUnknown
}

func (s SmsStat) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *SmsStat) UnmarshalJSON(data []byte) error {
	code, err := unmarshalEnum(data, namesOf(smsStatNames))
	if err != nil {
		return err
	}
	*s = SmsStatFromCode(code)
	return nil
}

// ================================================================================
// Messages
// ================================================================================

// DeviceMessage is one stored SMS as reported by the device. It is read only.
type DeviceMessage struct {
	Status   SmsStat  `json:"status"`
	Index    int      `json:"index"`
	Phone    string   `json:"phone"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	Sca      string   `json:"sca"`
	SaveType int      `json:"save_type"`
	Priority Priority `json:"priority"`
	Type     SmsType  `json:"type"`
}

// ListParams controls a list operation.
type ListParams struct {
	BoxType         BoxType
	SortType        SortType
	ReadCount       int
	Ascending       bool
	UnreadPreferred bool
}

// DefaultListParams returns the parameters used when a caller specifies none.
func DefaultListParams() ListParams {
	return ListParams{
		BoxType:   BoxLocalInbox,
		SortType:  SortByDate,
		ReadCount: 20,
	}
}

// ListResult is the device's answer to a list operation. Count is the device-reported
// total, which may exceed len(Messages).
type ListResult struct {
	Count    int             `json:"count"`
	Messages []DeviceMessage `json:"messages"`
}

// ================================================================================
// Enum helpers
// ================================================================================

func namesOf[T ~int](m map[T]string) map[string]int {
	out := make(map[string]int, len(m))
	for code, name := range m {
		out[name] = int(code)
	}
	return out
}

func parseEnum(s string, names map[string]int) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, ok := names[s]; ok {
		return code, nil
	}
	if code, ok := names[strings.ReplaceAll(s, "_", "-")]; ok {
		return code, nil
	}
	return strconv.Atoi(s)
}

func unmarshalEnum(data []byte, names map[string]int) (int, error) {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		return code, nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return 0, err
	}
	return parseEnum(name, names)
}
