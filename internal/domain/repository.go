package domain

// CircleReader reads circle records from a file
type CircleReader interface {
	ReadCircles(filename string) ([]CircleRecord, error)
}

// ConfigReader reads the configuration
type ConfigReader interface {
	ReadConfig(path string) (*Config, error)
}
