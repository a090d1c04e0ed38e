package eventservices

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
	"github.com/jiaming2012/topstepx-broker/src/mock"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *CredentialStore, *mock.MockTopstepX) {
	platform := mock.NewMockTopstepX(t)
	creds := NewCredentialStore(kvstore.NewMemoryStore())
	client := NewTopstepXClient(platform.URL(), 2*time.Second)

	return NewSessionManager(creds, client), creds, platform
}

func storedToken(t *testing.T, creds *CredentialStore) string {
	token, err := creds.GetSessionToken(context.Background())
	if errors.Is(err, eventmodels.NoSessionTokenErr) {
		return ""
	}

	require.NoError(t, err)
	return token.Value
}

func TestSessionManager_Authenticate(t *testing.T) {
	ctx := context.Background()
	credential := eventmodels.Credential{Username: "u1", APIKey: "k1"}

	t.Run("stores the token it returns", func(t *testing.T) {
		// arrange
		manager, creds, platform := newTestSessionManager(t)
		require.NoError(t, manager.SaveCredentials(ctx, credential))

		// act
		token, err := manager.AuthenticateStored(ctx)

		// assert
		require.NoError(t, err)
		require.Equal(t, "tok-abc", token.Value)
		require.Equal(t, token.Value, storedToken(t, creds))

		req, found := platform.LastRequest(mock.LoginKeyPath)
		require.True(t, found)
		require.Empty(t, req.Authorization)

		var body eventmodels.LoginKeyRequestDTO
		require.NoError(t, json.Unmarshal(req.Body, &body))
		require.Equal(t, "u1", body.UserName)
		require.Equal(t, "k1", body.APIKey)
	})

	t.Run("rejected credentials keep the prior token", func(t *testing.T) {
		// arrange
		manager, creds, platform := newTestSessionManager(t)
		require.NoError(t, creds.SetSessionToken(ctx, eventmodels.SessionToken{Value: "tok-old"}))
		platform.SetResponse(mock.LoginKeyPath, http.StatusOK, `{"token":null,"success":false,"errorCode":3,"errorMessage":"Invalid API key"}`)

		// act
		_, err := manager.Authenticate(ctx, eventmodels.Credential{Username: "u1", APIKey: "bad"})

		// assert
		var authErr *eventmodels.AuthenticationFailedError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Invalid API key", authErr.Message)
		require.Equal(t, http.StatusOK, authErr.StatusCode)
		require.Contains(t, err.Error(), "Invalid API key")
		require.Equal(t, "tok-old", storedToken(t, creds))
	})

	t.Run("non success status carries the upstream body", func(t *testing.T) {
		manager, creds, platform := newTestSessionManager(t)
		platform.SetResponse(mock.LoginKeyPath, http.StatusUnauthorized, `unauthorized for user`)

		_, err := manager.Authenticate(ctx, credential)

		var authErr *eventmodels.AuthenticationFailedError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		require.Equal(t, "unauthorized for user", authErr.Body)
		require.Equal(t, "", storedToken(t, creds))
	})

	t.Run("malformed body", func(t *testing.T) {
		manager, _, platform := newTestSessionManager(t)
		platform.SetResponse(mock.LoginKeyPath, http.StatusOK, `<html>oops</html>`)

		_, err := manager.Authenticate(ctx, credential)
		require.Equal(t, eventmodels.AuthenticationFailedKind, eventmodels.KindOf(err))
	})

	t.Run("network failure", func(t *testing.T) {
		creds := NewCredentialStore(kvstore.NewMemoryStore())
		manager := NewSessionManager(creds, NewTopstepXClient("http://127.0.0.1:1", time.Second))

		_, err := manager.Authenticate(ctx, credential)

		var authErr *eventmodels.AuthenticationFailedError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, 0, authErr.StatusCode)
		require.NotNil(t, authErr.Cause)
	})

	t.Run("no stored credentials", func(t *testing.T) {
		manager, _, platform := newTestSessionManager(t)

		_, err := manager.AuthenticateStored(ctx)

		require.Equal(t, eventmodels.AuthenticationFailedKind, eventmodels.KindOf(err))
		require.ErrorIs(t, err, eventmodels.NoCredentialsErr)
		require.Empty(t, platform.Requests(mock.LoginKeyPath))
	})

	t.Run("no retry on failure", func(t *testing.T) {
		manager, _, platform := newTestSessionManager(t)
		platform.SetResponse(mock.LoginKeyPath, http.StatusInternalServerError, ``)

		_, err := manager.Authenticate(ctx, credential)
		require.Error(t, err)
		require.Len(t, platform.Requests(mock.LoginKeyPath), 1)
	})
}

func TestSessionManager_SaveCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		manager, creds, _ := newTestSessionManager(t)

		err := manager.SaveCredentials(ctx, eventmodels.Credential{Username: "u1"})

		var fieldsErr *eventmodels.MissingFieldsError
		require.ErrorAs(t, err, &fieldsErr)
		require.Equal(t, []string{"API_KEY"}, fieldsErr.Fields)

		_, err = creds.GetCredential(ctx)
		require.ErrorIs(t, err, eventmodels.NoCredentialsErr)
	})

	t.Run("replaces the previous pair", func(t *testing.T) {
		manager, creds, _ := newTestSessionManager(t)

		require.NoError(t, manager.SaveCredentials(ctx, eventmodels.Credential{Username: "u1", APIKey: "k1"}))
		require.NoError(t, manager.SaveCredentials(ctx, eventmodels.Credential{Username: "u2", APIKey: "k2"}))

		credential, err := creds.GetCredential(ctx)
		require.NoError(t, err)
		require.Equal(t, eventmodels.Credential{Username: "u2", APIKey: "k2"}, *credential)
	})
}

func TestSessionManager_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotated token is stored", func(t *testing.T) {
		// arrange
		manager, creds, platform := newTestSessionManager(t)
		require.NoError(t, creds.SetSessionToken(ctx, eventmodels.SessionToken{Value: "tok-1"}))
		platform.SetResponse(mock.ValidatePath, http.StatusOK, `{"success":true,"newToken":"tok-2"}`)

		// act
		result, err := manager.ValidateToken(ctx)

		// assert
		require.NoError(t, err)
		require.True(t, result.Valid())
		require.Equal(t, eventmodels.ValidationRotated, result.Outcome)
		require.Equal(t, "tok-2", storedToken(t, creds))

		req, _ := platform.LastRequest(mock.ValidatePath)
		require.Equal(t, "Bearer tok-1", req.Authorization)
	})

	t.Run("valid without new token keeps the token", func(t *testing.T) {
		manager, creds, _ := newTestSessionManager(t)
		require.NoError(t, creds.SetSessionToken(ctx, eventmodels.SessionToken{Value: "tok-1"}))

		result, err := manager.ValidateToken(ctx)

		require.NoError(t, err)
		require.True(t, result.Valid())
		require.Equal(t, eventmodels.ValidationUnchanged, result.Outcome)
		require.Equal(t, "tok-1", storedToken(t, creds))
	})

	t.Run("rejection leaves the token and does not log in", func(t *testing.T) {
		manager, creds, platform := newTestSessionManager(t)
		require.NoError(t, creds.SaveCredential(ctx, eventmodels.Credential{Username: "u1", APIKey: "k1"}))
		require.NoError(t, creds.SetSessionToken(ctx, eventmodels.SessionToken{Value: "tok-1"}))
		platform.SetResponse(mock.ValidatePath, http.StatusUnauthorized, ``)

		result, err := manager.ValidateToken(ctx)

		require.NoError(t, err)
		require.False(t, result.Valid())
		require.Equal(t, eventmodels.ValidationRejected, result.Outcome)
		require.Equal(t, http.StatusUnauthorized, result.StatusCode)
		require.Equal(t, "tok-1", storedToken(t, creds))
		require.Empty(t, platform.Requests(mock.LoginKeyPath))
	})

	t.Run("success false is a rejection", func(t *testing.T) {
		manager, creds, platform := newTestSessionManager(t)
		require.NoError(t, creds.SetSessionToken(ctx, eventmodels.SessionToken{Value: "tok-1"}))
		platform.SetResponse(mock.ValidatePath, http.StatusOK, `{"success":false,"newToken":"tok-9"}`)

		result, err := manager.ValidateToken(ctx)

		require.NoError(t, err)
		require.Equal(t, eventmodels.ValidationRejected, result.Outcome)
		require.Equal(t, "tok-1", storedToken(t, creds))
	})

	t.Run("no stored token", func(t *testing.T) {
		manager, _, platform := newTestSessionManager(t)

		result, err := manager.ValidateToken(ctx)

		require.NoError(t, err)
		require.Equal(t, eventmodels.ValidationRejected, result.Outcome)
		require.Empty(t, platform.Requests(mock.ValidatePath))
	})
}
