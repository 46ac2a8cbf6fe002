package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/room-controller/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Room Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: green; font-weight: bold; }
.closed { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.cmds button { font-family: monospace; margin: 2px; }
</style>
</head>
<body>
<h1>Room Controller</h1>

<h2>State</h2>
<table>
<tr><th>Door</th><td id="door" class="{{.DoorClass}}">{{.Door}}</td></tr>
<tr><th>Lamp</th><td id="lamp">{{.Room.Duty}}%</td></tr>
<tr><th>Baseline</th><td>{{.Room.Baseline}}%</td></tr>
<tr><th>Ramp</th><td>{{if .Room.RampActive}}active, next {{.Room.RampNext}}%{{else}}idle{{end}}</td></tr>
<tr><th>Restore</th><td>{{if .Room.RestorePending}}pending{{else}}none{{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Commands</h2>
<div class="cmds">
<button data-cmd="1">100%</button><button data-cmd="2">70%</button><button data-cmd="3">50%</button><button data-cmd="4">20%</button><button data-cmd="0">Off</button>
<button data-cmd="g">Ramp</button><button data-cmd="o">Open</button><button data-cmd="c">Close</button>
</div>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Serial</th><td>{{.Config.SerialPort}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Opens</th><td>{{.Room.Counts.Opens}}</td></tr>
<tr><th>Closes</th><td>{{.Room.Counts.Closes}}</td></tr>
<tr><th>Auto closes</th><td>{{.Room.Counts.AutoCloses}}</td></tr>
<tr><th>Restorations</th><td>{{.Room.Counts.Restorations}}</td></tr>
<tr><th>Ramps</th><td>{{.Room.Counts.Ramps}}</td></tr>
<tr><th>Bounces denied</th><td>{{.Room.Counts.BouncesDenied}}</td></tr>
<tr><th>Unknown commands</th><td>{{.Room.Counts.Unknown}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
document.querySelectorAll("button[data-cmd]").forEach(function(b) {
  b.addEventListener("click", function() {
    fetch("/command/" + encodeURIComponent(b.dataset.cmd), { method: "POST" })
      .then(function() { setTimeout(function() { location.reload(); }, 200); });
  });
});
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	door := status.DoorString(snap)
	class := "unknown"
	switch door {
	case "OPEN":
		class = "open"
	case "CLOSED":
		class = "closed"
	}

	data := struct {
		status.Snapshot
		Uptime    time.Duration
		Door      string
		DoorClass string
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		Door:      door,
		DoorClass: class,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("render status page")
	}
}
