package configuration

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type DashboardConfig struct {
	Enabled bool `json:"enabled"`
	// ClearScreen clears the terminal before every frame
	ClearScreen bool `json:"clearScreen"`
	// HistorySize is the number of cycles kept for the temperature graph
	HistorySize int `json:"historySize"`
}
