package eventmodels

import "strings"

// Credential is the username/API-key pair used to log in to the platform.
type Credential struct {
	Username string `json:"USERNAME"`
	APIKey   string `json:"API_KEY"`
}

func (c Credential) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "USERNAME")
	}

	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "API_KEY")
	}

	if len(missing) > 0 {
		return NewMissingFieldsError(missing...)
	}

	return nil
}
