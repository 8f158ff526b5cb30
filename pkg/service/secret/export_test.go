package secret

// ParseCredentials is exported for testing
var ParseCredentials = parseCredentials
