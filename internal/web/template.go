package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/switch-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Switch Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.state { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Switch Monitor</h1>

<h2>State</h2>
<table>
<tr><th>Switch</th><td>{{.Config.Name}}</td></tr>
<tr><th>Mode</th><td>{{.Config.Mode}}</td></tr>
<tr><th>Current</th><td class="{{if .State}}state{{else}}unknown{{end}}">{{stateOrUnknown .State}}</td></tr>
<tr><th>Previous</th><td>{{stateOrUnknown .Previous}}</td></tr>
<tr><th>Mapped value</th><td>{{.Mapped}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
</table>

<h2>Changes</h2>
<table>
<tr><th>Total</th><td>{{.Counts.Changes}}</td></tr>
{{range $state, $n := .Counts.ByState}}<tr><th>{{$state}}</th><td>{{$n}}</td></tr>
{{end}}</table>

{{if .Network}}
<h2>Network</h2>
<table>
<tr><th>Type</th><td>{{.Network.Type}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>
<tr><th>Status</th><td>{{.Network.Status}}</td></tr>
{{if .Network.SSID}}<tr><th>SSID</th><td>{{.Network.SSID}}</td></tr>{{end}}
</table>
{{end}}

<h2>Config</h2>
<table>
<tr><th>Pins</th><td>{{.Config.Pins}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Read cycle</th><td>{{.Config.ReadCycleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><th>Invert</th><td>{{.Config.Invert}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render template: %v", err)
	}
}
