package config

import "time"

// NewScanForTest creates a Scan config holding flag values for testing purposes
func NewScanForTest(inactiveDays int, messageTemplate string, notifyInterval time.Duration, concurrency int, channelTypes []string) *Scan {
	return &Scan{
		inactiveDays:    inactiveDays,
		messageTemplate: messageTemplate,
		notifyInterval:  notifyInterval,
		concurrency:     concurrency,
		channelTypes:    channelTypes,
	}
}

// ResolveScan is exported for testing
var ResolveScan = (*Scan).resolve

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewSecretForTest creates a Secret config for testing purposes
func NewSecretForTest(backend, name, botToken, projectID string, cacheTTL time.Duration) *Secret {
	return &Secret{
		backend:   backend,
		name:      name,
		botToken:  botToken,
		projectID: projectID,
		cacheTTL:  cacheTTL,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}
