package dashboard

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Parkinson Insight - Live Predictions</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1100px; margin: 0 auto; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
        .status { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; }
        .status.connected { background: #27ae60; }
        .status.disconnected { background: #e74c3c; }
        table { width: 100%; border-collapse: collapse; background: white; border-radius: 8px; }
        th, td { padding: 10px; border-bottom: 1px solid #ecf0f1; text-align: left; }
        th { background: #ecf0f1; }
        .positive { color: #e74c3c; font-weight: bold; }
        .negative { color: #27ae60; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Live Predictions</h1>
        <span id="status" class="status disconnected">Disconnected</span>
    </div>
    <table>
        <thead><tr><th>Time</th><th>User</th><th>Kind</th><th>Model</th><th>Risk</th><th>Status</th></tr></thead>
        <tbody id="rows"></tbody>
    </table>
</div>
<script>
    const rows = document.getElementById('rows');
    const status = document.getElementById('status');

    function connect() {
        const proto = location.protocol === 'https:' ? 'wss' : 'ws';
        const ws = new WebSocket(proto + '://' + location.host + '{{.WebSocketPath}}');
        ws.onopen = () => { status.textContent = 'Connected'; status.className = 'status connected'; };
        ws.onclose = () => {
            status.textContent = 'Disconnected';
            status.className = 'status disconnected';
            setTimeout(connect, 2000);
        };
        ws.onmessage = (event) => {
            const msg = JSON.parse(event.data);
            if (msg.type !== 'prediction') return;
            const rec = msg.record;
            const result = rec.result || {};
            const risk = result.riskScore !== undefined ? result.riskScore : '-';
            const positive = result.status === 1 || result.prediction === 1;
            const tr = document.createElement('tr');
            [new Date(rec.timestamp).toLocaleTimeString(), rec.userId, rec.kind, rec.model, risk].forEach((v) => {
                const td = document.createElement('td');
                td.textContent = v;
                tr.appendChild(td);
            });
            const td = document.createElement('td');
            td.textContent = positive ? 'At risk' : 'Low risk';
            td.className = positive ? 'positive' : 'negative';
            tr.appendChild(td);
            rows.prepend(tr);
            while (rows.children.length > 200) rows.removeChild(rows.lastChild);
        };
    }
    connect();
</script>
</body>
</html>`))

// PageHandler serves the live feed page. wsPath is where HandleWebSocket
// is mounted.
func PageHandler(wsPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, struct{ WebSocketPath string }{wsPath}); err != nil {
			log.Error().Err(err).Msg("Failed to render dashboard page")
		}
	}
}
