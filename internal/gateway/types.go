package gateway

// SSEEvent is serialised as JSON and pushed over the GET /events SSE stream.
type SSEEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// DashboardStatus is a live snapshot of the gateway and cache state.
type DashboardStatus struct {
	Pipelines     int    `json:"pipelines"`
	Running       int    `json:"running"`
	Failed        int    `json:"failed"`
	Succeeded     int    `json:"succeeded"`
	Repositories  int    `json:"repositories"`
	LastRefreshAt string `json:"last_refresh_at,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
