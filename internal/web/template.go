package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/prb-computer/internal/status"
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
	"openClosed": func(open bool) string {
		if open {
			return "OPEN"
		}
		return "CLOSED"
	},
	"bar": func(v float64) string { return fmt.Sprintf("%.2f bar", v) },
	"degC": func(v float64) string { return fmt.Sprintf("%.1f °C", v) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>PRB Computer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: green; font-weight: bold; }
.closed { color: #888; }
.abort, .error { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>PRB Computer{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Sequencer</h2>
<table>
<tr><th>State</th><td id="state" class="{{if eq .Bench.State.String "ABORT"}}abort{{else if eq .Bench.State.String "ERROR"}}error{{end}}">{{.Bench.State}}</td></tr>
<tr><th>Ignition</th><td id="ignition">{{.Bench.Ignition}}</td></tr>
<tr><th>Passivation</th><td id="passivation">{{.Bench.Passivation}}</td></tr>
<tr><th>Abort</th><td id="abort">{{.Bench.Abort}}</td></tr>
<tr><th>LED</th><td>{{.Bench.Color}}</td></tr>
<tr><th>Ready</th><td>{{if .Published}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Valves</h2>
<table>
<tr><th>Main engine</th><td id="valve-me" class="{{if .Bench.Memory.Valves.MainEngine}}open{{else}}closed{{end}}">{{openClosed .Bench.Memory.Valves.MainEngine}}</td></tr>
<tr><th>Oxidizer</th><td id="valve-mo" class="{{if .Bench.Memory.Valves.Oxidizer}}open{{else}}closed{{end}}">{{openClosed .Bench.Memory.Valves.Oxidizer}}</td></tr>
<tr><th>Igniter</th><td id="valve-ig" class="{{if .Bench.Memory.Valves.Igniter}}open{{else}}closed{{end}}">{{openClosed .Bench.Memory.Valves.Igniter}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
<tr><th>P_OIN</th><td id="p_oin">{{bar .Bench.Memory.Readings.OxidizerInletPressure}}</td></tr>
<tr><th>T_OIN</th><td id="t_oin">{{degC .Bench.Memory.Readings.OxidizerInletTemperature}}</td></tr>
<tr><th>P_EIN</th><td id="p_ein">{{bar .Bench.Memory.Readings.EngineInletPressure}}</td></tr>
<tr><th>T_EIN</th><td id="t_ein">{{degC .Bench.Memory.Readings.EngineInletTemperature}}</td></tr>
<tr><th>T_EIN (digital)</th><td id="t_ein_digital">{{degC .Bench.Memory.Readings.EngineInletTemperatureDigital}}</td></tr>
<tr><th>P_CCC</th><td id="p_ccc">{{bar .Bench.Memory.Readings.ChamberPressure}}</td></tr>
<tr><th>T_CCC</th><td id="t_ccc">{{degC .Bench.Memory.Readings.ChamberTemperature}}</td></tr>
</table>

<h2>Burn</h2>
<table>
<tr><th>Integrating</th><td>{{if .Bench.Memory.Burn.Active}}yes{{else}}no{{end}}</td></tr>
<tr><th>Total impulse</th><td id="impulse">{{printf "%.1f" .Bench.Memory.Burn.TotalImpulse}} N·s</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Config.SerialPort}}<tr><th>Host link</th><td>{{.Config.SerialPort}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Sensor poll</th><td>{{.Config.SensorPollMs}}ms</td></tr>
<tr><th>Burn mode</th><td>{{.Config.BurnMode}}</td></tr>
<tr><th>Shutdown</th><td>{{.Config.Shutdown}}{{if .Config.ColdFlow}} (cold flow){{end}}</td></tr>
<tr><th>GPIO</th><td>{{.Config.GPIODriver}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "prb/bench/telemetry";
  var dot = document.getElementById("live-dot");

  function setText(id, text) {
    var el = document.getElementById(id);
    if (el) el.textContent = text;
  }

  function setValve(id, open) {
    var el = document.getElementById(id);
    if (!el) return;
    el.textContent = open ? "OPEN" : "CLOSED";
    el.className = open ? "open" : "closed";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.bench) return;
      var b = msg.bench;
      setText("state", b.state);
      setText("ignition", b.ignition);
      setText("passivation", b.passivation);
      setText("abort", b.abort);
      setValve("valve-me", b.valves.main_engine);
      setValve("valve-mo", b.valves.oxidizer);
      setValve("valve-ig", b.valves.igniter);
      setText("p_oin", b.sensors.p_oin.toFixed(2) + " bar");
      setText("p_ein", b.sensors.p_ein.toFixed(2) + " bar");
      setText("p_ccc", b.sensors.p_ccc.toFixed(2) + " bar");
      setText("impulse", b.burn.total_impulse_ns.toFixed(1) + " N·s");
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
