package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReportSampleRows is the default number of sample rows per report section.
	ReportSampleRows int `mapstructure:"report_sample_rows" default:"10"`
	// ReportSampleColumns is the default number of columns shown in
	// unmatched-row samples.
	ReportSampleColumns int `mapstructure:"report_sample_columns" default:"10"`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
