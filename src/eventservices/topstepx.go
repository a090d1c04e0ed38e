package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/utils"
)

const (
	loginKeyPath      = "/api/Auth/loginKey"
	validatePath      = "/api/Auth/validate"
	accountSearchPath = "/api/Account/search"

	// bodyDetailLimit caps how much of an upstream body is copied into errors.
	bodyDetailLimit = 512
)

// TopstepXClient talks to the platform gateway. Every call is bounded by the
// client timeout and the caller's context.
type TopstepXClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewTopstepXClient(baseURL string, timeout time.Duration) *TopstepXClient {
	return &TopstepXClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.GetTracerProvider().Tracer("topstepx"),
	}
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyDetailLimit {
		return s[:bodyDetailLimit] + "..."
	}

	return s
}

func endSpan(span trace.Span, res *utils.HTTPResponse, err error) {
	if res != nil {
		span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// LoginKey exchanges a credential for a session token. Every failure is
// returned as *eventmodels.AuthenticationFailedError.
func (c *TopstepXClient) LoginKey(ctx context.Context, credential eventmodels.Credential) (token eventmodels.SessionToken, err error) {
	ctx, span := c.tracer.Start(ctx, "topstepx.LoginKey")
	var res *utils.HTTPResponse
	defer func() { endSpan(span, res, err) }()

	payload := eventmodels.LoginKeyRequestDTO{
		UserName: credential.Username,
		APIKey:   credential.APIKey,
	}

	res, err = utils.PostJSON(ctx, c.httpClient, c.baseURL+loginKeyPath, "", payload)
	if err != nil {
		return eventmodels.SessionToken{}, &eventmodels.AuthenticationFailedError{
			Message: "login request failed",
			Cause:   err,
		}
	}

	if !res.OK() {
		return eventmodels.SessionToken{}, &eventmodels.AuthenticationFailedError{
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
			Message:    "login rejected",
		}
	}

	var dto eventmodels.LoginKeyResponseDTO
	if jsonErr := json.Unmarshal(res.Body, &dto); jsonErr != nil {
		return eventmodels.SessionToken{}, &eventmodels.AuthenticationFailedError{
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
			Message:    "malformed login response",
			Cause:      jsonErr,
		}
	}

	if dto.Token == "" || (dto.Success != nil && !*dto.Success) {
		msg := "login response carried no token"
		if dto.ErrorMessage != nil && *dto.ErrorMessage != "" {
			msg = *dto.ErrorMessage
		} else if dto.ErrorCode != 0 {
			msg = fmt.Sprintf("login rejected with error code %d", dto.ErrorCode)
		}

		return eventmodels.SessionToken{}, &eventmodels.AuthenticationFailedError{
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
			Message:    msg,
		}
	}

	return eventmodels.SessionToken{Value: dto.Token}, nil
}

// Validate asks the platform whether token is still good. newToken is set
// only when the platform rotated it. Rejections come back as an outcome, not an error.
func (c *TopstepXClient) Validate(ctx context.Context, token eventmodels.SessionToken) (result eventmodels.ValidationResult, newToken eventmodels.SessionToken) {
	ctx, span := c.tracer.Start(ctx, "topstepx.Validate")
	var res *utils.HTTPResponse
	var err error
	defer func() {
		span.SetAttributes(attribute.String("validation.outcome", string(result.Outcome)))
		endSpan(span, res, err)
	}()

	res, err = utils.PostJSON(ctx, c.httpClient, c.baseURL+validatePath, token.Value, nil)
	if err != nil {
		return eventmodels.ValidationResult{
			Outcome: eventmodels.ValidationRejected,
			Detail:  err.Error(),
		}, eventmodels.SessionToken{}
	}

	rejected := eventmodels.ValidationResult{
		Outcome:    eventmodels.ValidationRejected,
		StatusCode: res.StatusCode,
		Detail:     truncateBody(res.Body),
	}

	if !res.OK() {
		return rejected, eventmodels.SessionToken{}
	}

	var dto eventmodels.ValidateResponseDTO
	if jsonErr := json.Unmarshal(res.Body, &dto); jsonErr != nil {
		log.Warnf("TopstepXClient.Validate: malformed response: %v", jsonErr)
		return rejected, eventmodels.SessionToken{}
	}

	if !dto.Success {
		return rejected, eventmodels.SessionToken{}
	}

	if dto.NewToken != "" {
		return eventmodels.ValidationResult{
			Outcome:    eventmodels.ValidationRotated,
			StatusCode: res.StatusCode,
		}, eventmodels.SessionToken{Value: dto.NewToken}
	}

	return eventmodels.ValidationResult{
		Outcome:    eventmodels.ValidationUnchanged,
		StatusCode: res.StatusCode,
	}, eventmodels.SessionToken{}
}

// SearchAccounts fetches the account list. A body that is not JSON is
// returned as *eventmodels.SyncUnavailableError; a JSON body is parsed
// whatever the status code.
func (c *TopstepXClient) SearchAccounts(ctx context.Context, token eventmodels.SessionToken, onlyActive bool) (accounts eventmodels.AccountSnapshot, err error) {
	ctx, span := c.tracer.Start(ctx, "topstepx.SearchAccounts", trace.WithAttributes(attribute.Bool("accounts.only_active", onlyActive)))
	var res *utils.HTTPResponse
	defer func() {
		span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
		endSpan(span, res, err)
	}()

	payload := eventmodels.AccountSearchRequestDTO{
		OnlyActiveAccounts: onlyActive,
	}

	res, err = utils.PostJSON(ctx, c.httpClient, c.baseURL+accountSearchPath, token.Value, payload)
	if err != nil {
		return nil, &eventmodels.SyncUnavailableError{Cause: err}
	}

	var dto eventmodels.AccountSearchResponseDTO
	if jsonErr := json.Unmarshal(res.Body, &dto); jsonErr != nil {
		return nil, &eventmodels.SyncUnavailableError{
			StatusCode: res.StatusCode,
			Body:       truncateBody(res.Body),
			Cause:      jsonErr,
		}
	}

	if !res.OK() {
		log.Warnf("TopstepXClient.SearchAccounts: status %d: %s", res.StatusCode, truncateBody(res.Body))
	}

	return dto.Accounts, nil
}
