package entities

// Feature describes one canned-command group for discoverability.
type Feature struct {
	Name        string   `json:"name"`
	Commands    []string `json:"commands"`
	Description string   `json:"description"`
}

type ServiceInfo struct {
	Message  string   `json:"message"`
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
