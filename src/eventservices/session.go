package eventservices

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

// SessionManager turns the stored credential into a session token and keeps
// the stored token in step with what the platform hands back. It holds no
// state of its own; everything lives in the CredentialStore.
type SessionManager struct {
	creds  *CredentialStore
	client *TopstepXClient
}

func NewSessionManager(creds *CredentialStore, client *TopstepXClient) *SessionManager {
	return &SessionManager{
		creds:  creds,
		client: client,
	}
}

func (m *SessionManager) SaveCredentials(ctx context.Context, credential eventmodels.Credential) error {
	if err := credential.Validate(); err != nil {
		return err
	}

	if err := m.creds.SaveCredential(ctx, credential); err != nil {
		return fmt.Errorf("SessionManager.SaveCredentials: %w", err)
	}

	log.WithField("username", credential.Username).Info("credentials saved")
	return nil
}

// Authenticate logs in with credential and stores the new token before
// returning it. On failure the stored token is left as it was.
func (m *SessionManager) Authenticate(ctx context.Context, credential eventmodels.Credential) (eventmodels.SessionToken, error) {
	token, err := m.client.LoginKey(ctx, credential)
	if err != nil {
		log.WithField("username", credential.Username).Warnf("SessionManager.Authenticate: %v", err)
		return eventmodels.SessionToken{}, err
	}

	if err := m.creds.SetSessionToken(ctx, token); err != nil {
		return eventmodels.SessionToken{}, fmt.Errorf("SessionManager.Authenticate: failed to persist token: %w", err)
	}

	log.WithField("username", credential.Username).Infof("authenticated, token %s", token.Prefix())
	return token, nil
}

// AuthenticateStored authenticates with whatever credential is currently stored.
func (m *SessionManager) AuthenticateStored(ctx context.Context) (eventmodels.SessionToken, error) {
	credential, err := m.creds.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, eventmodels.NoCredentialsErr) {
			return eventmodels.SessionToken{}, &eventmodels.AuthenticationFailedError{
				Message: "no stored credentials",
				Cause:   err,
			}
		}

		return eventmodels.SessionToken{}, fmt.Errorf("SessionManager.AuthenticateStored: %w", err)
	}

	return m.Authenticate(ctx, *credential)
}

// ValidateToken checks the stored token. A rotated token is stored before
// returning. A rejection leaves the token alone and does not log in again.
// The error return only reports cache failures.
func (m *SessionManager) ValidateToken(ctx context.Context) (eventmodels.ValidationResult, error) {
	token, err := m.creds.GetSessionToken(ctx)
	if err != nil {
		if errors.Is(err, eventmodels.NoSessionTokenErr) {
			return eventmodels.ValidationResult{
				Outcome: eventmodels.ValidationRejected,
				Detail:  err.Error(),
			}, nil
		}

		return eventmodels.ValidationResult{}, fmt.Errorf("SessionManager.ValidateToken: %w", err)
	}

	result, newToken := m.client.Validate(ctx, token)

	switch result.Outcome {
	case eventmodels.ValidationRotated:
		if err := m.creds.SetSessionToken(ctx, newToken); err != nil {
			return eventmodels.ValidationResult{}, fmt.Errorf("SessionManager.ValidateToken: failed to persist rotated token: %w", err)
		}

		log.Infof("session token rotated, token %s", newToken.Prefix())
	case eventmodels.ValidationUnchanged:
		log.Debug("session token still valid")
	default:
		log.WithField("status", result.StatusCode).Warnf("session token rejected: %s", result.Detail)
	}

	return result, nil
}

// Token returns the stored bearer token for callers of other platform endpoints.
func (m *SessionManager) Token(ctx context.Context) (eventmodels.SessionToken, error) {
	return m.creds.GetSessionToken(ctx)
}
