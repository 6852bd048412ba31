package health

import (
	"bytes"
	"html/template"
	"sort"
)

// LedgerSummary is the exchange-wide state shown under the dependency checks.
type LedgerSummary struct {
	TotalProjects   int64
	ActiveOrders    int64
	TotalOrders     int64
	TotalRetired    int64
	FeeBps          int
	AccumulatedFees string
	OwnerAddress    string
}

type dashboardDep struct {
	Name    string
	Status  string
	PingMs  int64
	HasPing bool
	OK      bool
}

type dashboardView struct {
	Healthy     bool
	Traffic     TrafficInfo
	Runtime     RuntimeInfo
	Deps        []dashboardDep
	Subscribers int64
	Ledger      *LedgerSummary
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Carbon Exchange · Ledger Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #F8F9FA; color: #12352A; max-width: 880px; margin: 40px auto; padding: 0 20px; }
    h1 { font-size: 36px; letter-spacing: -1px; margin: 8px 0 24px; }
    h1.issue { color: #B91C1C; }
    section { background: #fff; border-radius: 16px; padding: 20px 28px; margin-bottom: 16px; box-shadow: 0 8px 30px rgba(18, 53, 42, 0.06); }
    h2 { font-size: 11px; text-transform: uppercase; letter-spacing: 2px; color: #64748b; margin: 0 0 12px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid #f1f5f9; font-weight: 600; }
    .row:last-child { border-bottom: none; }
    .ok { color: #1B6B4A; }
    .err { color: #EF4444; }
    code { font-size: 12px; }
    a { color: #1B6B4A; font-weight: 700; }
  </style>
</head>
<body>
  <div>Carbon Exchange</div>
  {{if .Healthy}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">Ledger Degraded</h1>{{end}}

  <section>
    <h2>Dependencies</h2>
    {{range .Deps}}<div class="row"><span>{{.Name}}</span><span class="{{if .OK}}ok{{else}}err{{end}}">{{.Status}}{{if .HasPing}} · {{.PingMs}} ms{{end}}</span></div>
    {{end}}<div class="row"><span>Event Stream subscribers</span><span>{{.Subscribers}}</span></div>
  </section>

  {{with .Ledger}}<section>
    <h2>Ledger</h2>
    <div class="row"><span>Projects</span><span>{{.TotalProjects}}</span></div>
    <div class="row"><span>Active orders</span><span>{{.ActiveOrders}} of {{.TotalOrders}}</span></div>
    <div class="row"><span>Credits retired</span><span>{{.TotalRetired}}</span></div>
    <div class="row"><span>Platform fee</span><span>{{.FeeBps}} bps</span></div>
    <div class="row"><span>Accumulated fees</span><span>{{.AccumulatedFees}}</span></div>
    <div class="row"><span>Owner</span><code>{{.OwnerAddress}}</code></div>
  </section>{{end}}

  <section>
    <h2>Traffic</h2>
    <div class="row"><span>Requests</span><span>{{.Traffic.TotalRequests}}</span></div>
    <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
    <div class="row"><span>Success rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
    <div class="row"><span>Avg latency</span><span>{{.Traffic.AvgResponseTime}} ms</span></div>
    <div class="row"><span>Uptime</span><span>{{.Runtime.UptimeSeconds}} s</span></div>
    <div class="row"><span>Heap</span><span>{{.Runtime.Memory.HeapUsed}} MB · {{.Runtime.GoVersion}}</span></div>
  </section>

  <p><a href="/health/json">/health/json</a> · <a href="/health/errors">/health/errors</a></p>
</body>
</html>
`))

// RenderDashboardHTML returns the HTML for GET /. ledger may be nil when no
// database is configured.
func RenderDashboardHTML(health CollectResult, ledger *LedgerSummary) string {
	view := dashboardView{
		Healthy:     health.Status == "ok",
		Traffic:     health.Traffic,
		Runtime:     health.Runtime,
		Subscribers: health.Dependencies["events"].Subscribers,
		Ledger:      ledger,
	}
	names := make([]string, 0, len(health.Dependencies))
	for name := range health.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := health.Dependencies[name]
		dep := dashboardDep{
			Name:   name,
			Status: d.Status,
			OK:     d.Status == "connected" || d.Status == "streaming",
		}
		if p, ok := d.PingMs.(*int64); ok && p != nil {
			dep.PingMs, dep.HasPing = *p, true
		}
		view.Deps = append(view.Deps, dep)
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		return "<!DOCTYPE html><p>Carbon Exchange: dashboard unavailable</p>"
	}
	return buf.String()
}
