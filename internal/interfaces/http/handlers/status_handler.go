package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smsgw/internal/application/dto"
	"github.com/turtacn/smsgw/internal/application/service"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Service}} status</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.Service}}</h1>
<table>
<tr><th>Version</th><td>{{.Version}} ({{.GitHash}})</td></tr>
<tr><th>Modem</th><td>{{.ModemURL}}</td></tr>
<tr><th>TLS</th><td>{{if .TLSEnabled}}enabled{{else}}disabled{{end}}</td></tr>
<tr><th>Alert recipient</th><td>{{if .AlertRecipient}}{{.AlertRecipient}}{{else}}not configured{{end}}</td></tr>
<tr><th>Uptime</th><td>{{.Uptime}}</td></tr>
</table>
<h2>Global usage</h2>
<table>
<tr><th>Window</th><th>Used</th><th>Limit</th><th>Remaining</th></tr>
<tr><td>Hourly</td><td>{{.Global.Hourly.Count}}</td><td>{{.Global.Hourly.Limit}}</td><td>{{.Global.Hourly.Remaining}}</td></tr>
<tr><td>Daily</td><td>{{.Global.Daily.Count}}</td><td>{{.Global.Daily.Limit}}</td><td>{{.Global.Daily.Remaining}}</td></tr>
</table>
{{if .Callers}}
<h2>Client usage</h2>
<table>
<tr><th>Client</th><th>Hourly</th><th>Daily</th></tr>
{{range .Callers}}<tr><td>{{.Name}}</td><td>{{.Hourly.Count}} / {{.Hourly.Limit}}</td><td>{{.Daily.Count}} / {{.Daily.Limit}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

// Endpoints lists the routes advertised by the banner.
var Endpoints = []string{
	"POST /send-sms",
	"GET /get-sms",
	"POST /alertmanager",
	"GET /status",
	"GET /api/status",
	"GET /metrics",
	"GET /health/live",
	"GET /health/ready",
}

// StatusHandler serves the banner and the status page.
type StatusHandler struct {
	statusService service.StatusAppService
	logger        logger.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(statusService service.StatusAppService, log logger.Logger) *StatusHandler {
	return &StatusHandler{statusService: statusService, logger: log}
}

// Banner describes the service.
// GET /
func (h *StatusHandler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, dto.BannerResponse{
		Service:   constants.ServiceName,
		Version:   constants.VersionFull(),
		Endpoints: Endpoints,
	})
}

// StatusPage renders the HTML status page.
// GET /status, GET /statusz
func (h *StatusHandler) StatusPage(c *gin.Context) {
	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, h.statusService.Status()); err != nil {
		h.logger.Error(c.Request.Context(), "Failed to render status page", err)
		c.String(http.StatusInternalServerError, "failed to render status page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// StatusJSON returns the status page data.
// GET /api/status
func (h *StatusHandler) StatusJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusService.Status())
}
