package modem

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/internal/domain/service/mocks"
)

const listResponse = `<?xml version="1.0" encoding="UTF-8"?>
<response>
<Count>2</Count>
<Messages>
<Message>
<Smstat>0</Smstat>
<Index>40001</Index>
<Phone>+447700900123</Phone>
<Content>Hello &amp; welcome</Content>
<Date>2024-03-01 10:00:00</Date>
<Sca></Sca>
<SaveType>4</SaveType>
<Priority>0</Priority>
<SmsType>1</SmsType>
</Message>
<Message>
<Smstat>1</Smstat>
<Index>40000</Index>
<Phone>Operator</Phone>
<Content>Your balance</Content>
<Date>2024-02-29 09:00:00</Date>
<Sca>+447000000000</Sca>
<SaveType>4</SaveType>
<Priority>9</Priority>
<SmsType>5</SmsType>
</Message>
</Messages>
</response>`

var testSession = models.Session{SessionID: "abc123", Token: "tok456"}

// fakeDevice serves canned bodies per path and remembers the last request.
type fakeDevice struct {
	mu       sync.Mutex
	bodies   map[string]string
	hits     int64
	lastReq  *http.Request
	lastBody string
}

func (f *fakeDevice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&f.hits, 1)
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.lastReq = r.Clone(context.Background())
	f.lastBody = string(body)
	f.mu.Unlock()
	resp, ok := f.bodies[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, resp)
}

func (f *fakeDevice) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq, f.lastBody
}

func newFakeDevice(t *testing.T, bodies map[string]string) (*fakeDevice, *Client) {
	t.Helper()
	device := &fakeDevice{bodies: bodies}
	server := httptest.NewServer(device)
	t.Cleanup(server.Close)
	return device, NewClient(server.URL + "/")
}

func TestParseSessionID(t *testing.T) {
	id, err := ParseSessionID("SessionID=abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = ParseSessionID("abc123")
	var formatErr *models.SessionFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "abc123", formatErr.Value)
}

func TestStripWhitespace(t *testing.T) {
	assert.Equal(t, "+447700900123", StripWhitespace(" +44 7700\t900 123\n"))
}

func TestAcquireSession(t *testing.T) {
	device, client := newFakeDevice(t, map[string]string{
		"/api/webserver/SesTokInfo": `<?xml version="1.0" encoding="UTF-8"?><response><SesInfo>SessionID=abc123</SesInfo><TokInfo>tok456</TokInfo></response>`,
	})

	session, err := client.AcquireSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSession, session)
	req, _ := device.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Empty(t, req.Header.Get("Cookie"))
}

func TestAcquireSession_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		assert func(t *testing.T, err error)
	}{
		{
			name: "missing prefix",
			body: `<response><SesInfo>abc123</SesInfo><TokInfo>tok</TokInfo></response>`,
			assert: func(t *testing.T, err error) {
				var formatErr *models.SessionFormatError
				assert.True(t, errors.As(err, &formatErr))
			},
		},
		{
			name: "device error envelope",
			body: `<?xml version="1.0" encoding="UTF-8"?><error><code>125003</code><message>Busy</message></error>`,
			assert: func(t *testing.T, err error) {
				var fault *models.DeviceFault
				require.True(t, errors.As(err, &fault))
				assert.Equal(t, 125003, fault.Code)
				assert.Equal(t, "Busy", fault.Message)
			},
		},
		{
			name: "unrecognized body",
			body: `<html>login</html>`,
			assert: func(t *testing.T, err error) {
				var protoErr *models.ProtocolError
				require.True(t, errors.As(err, &protoErr))
				assert.Equal(t, `<html>login</html>`, protoErr.Body)
			},
		},
		{
			name: "oversized body",
			body: `<response><SesInfo>SessionID=abc</SesInfo><TokInfo>` + strings.Repeat("t", maxResponseBody) + `</TokInfo></response>`,
			assert: func(t *testing.T, err error) {
				var protoErr *models.ProtocolError
				require.True(t, errors.As(err, &protoErr))
				assert.Contains(t, protoErr.Error(), "response body exceeds")
				assert.Less(t, len(protoErr.Body), 300)
			},
		},
		{
			name: "missing token",
			body: `<response><SesInfo>SessionID=abc</SesInfo></response>`,
			assert: func(t *testing.T, err error) {
				var protoErr *models.ProtocolError
				assert.True(t, errors.As(err, &protoErr))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newFakeDevice(t, map[string]string{"/api/webserver/SesTokInfo": tt.body})
			_, err := client.AcquireSession(context.Background())
			require.Error(t, err)
			tt.assert(t, err)
		})
	}
}

func TestListMessages(t *testing.T) {
	device, client := newFakeDevice(t, map[string]string{"/api/sms/sms-list": listResponse})

	params := models.ListParams{
		BoxType:         models.BoxLocalSent,
		SortType:        models.SortByPhone,
		ReadCount:       5,
		Ascending:       true,
		UnreadPreferred: false,
	}
	result, err := client.ListMessages(context.Background(), testSession, params)
	require.NoError(t, err)

	req, lastBody := device.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "SessionID=abc123", req.Header.Get("Cookie"))
	assert.Equal(t, "tok456", req.Header.Get("__RequestVerificationToken"))
	assert.Equal(t, "XMLHttpRequest", req.Header.Get("X-Requested-With"))
	assert.Equal(t, "text/xml", req.Header.Get("Content-Type"))

	for _, fragment := range []string{
		"<PageIndex>1</PageIndex>",
		"<ReadCount>5</ReadCount>",
		"<BoxType>2</BoxType>",
		"<SortType>1</SortType>",
		"<Ascending>1</Ascending>",
		"<UnreadPreferred>0</UnreadPreferred>",
	} {
		assert.Contains(t, lastBody, fragment)
	}

	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Messages, 2)
	first := result.Messages[0]
	assert.Equal(t, models.SmsStatUnread, first.Status)
	assert.Equal(t, 40001, first.Index)
	assert.Equal(t, "+447700900123", first.Phone)
	assert.Equal(t, "Hello & welcome", first.Content)
	assert.Equal(t, models.SmsTypeSingle, first.Type)

	second := result.Messages[1]
	assert.Equal(t, models.SmsStatRead, second.Status)
	assert.Equal(t, models.PriorityUnknown, second.Priority)
	assert.Equal(t, models.SmsTypeUnicode, second.Type)
	assert.Equal(t, "+447000000000", second.Sca)
}

func TestListMessages_NoMessagesElement(t *testing.T) {
	_, client := newFakeDevice(t, map[string]string{"/api/sms/sms-list": `<response><Count>0</Count></response>`})

	result, err := client.ListMessages(context.Background(), testSession, models.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Messages)
	assert.NotNil(t, result.Messages)
}

func TestListMessages_DeviceFault(t *testing.T) {
	_, client := newFakeDevice(t, map[string]string{"/api/sms/sms-list": `<error><code>125002</code><message></message></error>`})

	_, err := client.ListMessages(context.Background(), testSession, models.DefaultListParams())
	var fault *models.DeviceFault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, 125002, fault.Code)
}

func TestSendMessage(t *testing.T) {
	device, client := newFakeDevice(t, map[string]string{"/api/sms/send-sms": `<?xml version="1.0" encoding="UTF-8"?><response>OK</response>`})

	err := client.SendMessage(context.Background(), testSession, "+44 7700 900123", "héllo <b>", false)
	require.NoError(t, err)

	req, lastBody := device.last()
	assert.Equal(t, "SessionID=abc123", req.Header.Get("Cookie"))
	assert.Equal(t, "tok456", req.Header.Get("__RequestVerificationToken"))
	for _, fragment := range []string{
		"<Index>-1</Index>",
		"<Phones><Phone>+447700900123</Phone></Phones>",
		"<Sca></Sca>",
		"<Content>héllo &lt;b&gt;</Content>",
		"<Length>9</Length>",
		"<Reserved>-1</Reserved>",
		"<Date>-1</Date>",
	} {
		assert.Contains(t, lastBody, fragment)
	}
	assert.True(t, strings.HasPrefix(lastBody, "<?xml"))
}

func TestSendMessage_Failures(t *testing.T) {
	t.Run("device fault", func(t *testing.T) {
		_, client := newFakeDevice(t, map[string]string{"/api/sms/send-sms": `<error><code>113018</code><message>SMS full</message></error>`})
		err := client.SendMessage(context.Background(), testSession, "+1555", "hi", false)
		var fault *models.DeviceFault
		require.True(t, errors.As(err, &fault))
		assert.Equal(t, "SMS full", fault.Message)
	})

	t.Run("unexpected body", func(t *testing.T) {
		_, client := newFakeDevice(t, map[string]string{"/api/sms/send-sms": `<response>QUEUED</response>`})
		err := client.SendMessage(context.Background(), testSession, "+1555", "hi", false)
		var protoErr *models.ProtocolError
		require.True(t, errors.As(err, &protoErr))
		assert.Equal(t, `<response>QUEUED</response>`, protoErr.Body)
	})
}

func TestSendMessage_DryRunMakesNoRequest(t *testing.T) {
	device, client := newFakeDevice(t, map[string]string{})

	require.NoError(t, client.SendMessage(context.Background(), testSession, "+1555", "hi", true))
	assert.Equal(t, int64(0), atomic.LoadInt64(&device.hits))

	unreachable := NewClient("http://127.0.0.1:1")
	assert.NoError(t, unreachable.SendMessage(context.Background(), models.Session{}, "+1555", "hi", true))
}

func TestUnreachableDeviceIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url)
	err := client.SendMessage(context.Background(), testSession, "+1555", "hi", false)
	var transportErr *models.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "send", transportErr.Op)

	_, err = client.AcquireSession(context.Background())
	assert.True(t, errors.As(err, &transportErr))
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := client.AcquireSession(context.Background())
	var transportErr *models.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMetricsRecorded(t *testing.T) {
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordDeviceCall", "send", "ok", mock.AnythingOfType("time.Duration")).Return().Once()
	metrics.On("RecordDeviceCall", "session", "device_fault", mock.AnythingOfType("time.Duration")).Return().Once()

	device := &fakeDevice{bodies: map[string]string{
		"/api/sms/send-sms":         `<response>OK</response>`,
		"/api/webserver/SesTokInfo": `<error><code>1</code><message>x</message></error>`,
	}}
	server := httptest.NewServer(device)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, WithMetrics(metrics))

	require.NoError(t, client.SendMessage(context.Background(), testSession, "+1555", "hi", false))
	_, err := client.AcquireSession(context.Background())
	require.Error(t, err)
	require.NoError(t, client.SendMessage(context.Background(), testSession, "+1555", "hi", true))

	metrics.AssertExpectations(t)
}
