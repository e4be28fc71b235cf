package models

import "time"

// SystemMetrics is one synthetic resource-utilization sample. Samples live
// in a bounded rolling buffer (capacity 100, FIFO eviction).
type SystemMetrics struct {
	CPU       int       `json:"cpu" yaml:"cpu"`
	Memory    int       `json:"memory" yaml:"memory"`
	Disk      int       `json:"disk" yaml:"disk"`
	Network   int       `json:"network" yaml:"network"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// TestResult documents the shape of a single test outcome. The service
// serves a fixed sample set; it is not derived from any live source.
type TestResult struct {
	Name     string  `json:"name" yaml:"name"`
	Status   string  `json:"status" yaml:"status"` // passed | failed | skipped
	Duration float64 `json:"duration" yaml:"duration"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
	Suite    string  `json:"suite" yaml:"suite"` // JUnit | Playwright
}

// DeploymentEnvironment describes one deployment target and its health.
type DeploymentEnvironment struct {
	Name       string       `json:"name" yaml:"name"`
	Status     string       `json:"status" yaml:"status"` // healthy | warning | error
	Version    string       `json:"version" yaml:"version"`
	Uptime     string       `json:"uptime" yaml:"uptime"`
	LastDeploy string       `json:"last_deploy" yaml:"last_deploy"`
	URL        string       `json:"url,omitempty" yaml:"url,omitempty"`
	Resources  EnvResources `json:"resources" yaml:"resources"`
}

// EnvResources is the resource usage snapshot of an environment.
type EnvResources struct {
	CPU    int `json:"cpu" yaml:"cpu"`
	Memory int `json:"memory" yaml:"memory"`
	Disk   int `json:"disk" yaml:"disk"`
}
