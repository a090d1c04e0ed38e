package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/eventservices"
	"github.com/jiaming2012/topstepx-broker/src/realtime"
)

type SaveCredentialsResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type ValidateTokenResponse struct {
	Valid   bool                          `json:"valid"`
	Outcome eventmodels.ValidationOutcome `json:"outcome"`
}

type RefreshAccountsQuery struct {
	OnlyActive *bool `schema:"only_active"`
}

type RefreshAccountsResponse struct {
	Updated bool `json:"updated"`
	Count   int  `json:"count"`
}

// Handler serves the broker's HTTP surface.
type Handler struct {
	sessions    *eventservices.SessionManager
	cache       *eventservices.AccountSnapshotCache
	broadcaster *realtime.Broadcaster
	decoder     *schema.Decoder
}

func NewHandler(sessions *eventservices.SessionManager, cache *eventservices.AccountSnapshotCache, broadcaster *realtime.Broadcaster) *Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		sessions:    sessions,
		cache:       cache,
		broadcaster: broadcaster,
		decoder:     decoder,
	}
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.cache.Get(r.Context(), eventmodels.AccountSnapshot{})
	if err != nil {
		log.Warnf("handleAccounts: serving empty snapshot: %v", err)
	}

	if err := setResponse(accounts, w); err != nil {
		log.Errorf("handleAccounts: failed to set response: %v", err)
	}
}

func (h *Handler) handleSaveCredentials(w http.ResponseWriter, r *http.Request) {
	var credential eventmodels.Credential
	if err := json.NewDecoder(r.Body).Decode(&credential); err != nil {
		credential = eventmodels.Credential{}
	}

	if err := h.sessions.SaveCredentials(r.Context(), credential); err != nil {
		setWebError("handleSaveCredentials", err, w)
		return
	}

	token, err := h.sessions.Authenticate(r.Context(), credential)
	if err != nil {
		setWebError("handleSaveCredentials", err, w)
		return
	}

	resp := SaveCredentialsResponse{
		Status: "ok",
		Token:  token.Value,
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handleSaveCredentials: failed to set response: %v", err)
	}
}

func (h *Handler) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.cache.Get(r.Context(), eventmodels.AccountSnapshot{})
	if err != nil {
		log.Warnf("handleDashboardMetrics: computing over empty snapshot: %v", err)
	}

	if err := setResponse(eventservices.ComputeDashboardMetrics(accounts), w); err != nil {
		log.Errorf("handleDashboardMetrics: failed to set response: %v", err)
	}
}

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessions.ValidateToken(r.Context())
	if err != nil {
		setWebError("handleValidateToken", err, w)
		return
	}

	resp := ValidateTokenResponse{
		Valid:   result.Valid(),
		Outcome: result.Outcome,
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handleValidateToken: failed to set response: %v", err)
	}
}

func (h *Handler) handleRefreshAccounts(w http.ResponseWriter, r *http.Request) {
	var query RefreshAccountsQuery
	if err := h.decoder.Decode(&query, r.URL.Query()); err != nil {
		if respErr := setErrorResponse(eventmodels.MissingFieldsKind, http.StatusBadRequest, err, w); respErr != nil {
			log.Errorf("handleRefreshAccounts: failed to set error response: %v", respErr)
		}
		return
	}

	onlyActive := true
	if query.OnlyActive != nil {
		onlyActive = *query.OnlyActive
	}

	result, err := h.broadcaster.Refresh(r.Context(), onlyActive)
	if err != nil {
		setWebError("handleRefreshAccounts", err, w)
		return
	}

	resp := RefreshAccountsResponse{
		Updated: result.Updated,
		Count:   len(result.Accounts),
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handleRefreshAccounts: failed to set response: %v", err)
	}
}

// corsMiddleware allows any origin and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleFunc(router *mux.Router, pattern string, f http.HandlerFunc, methods ...string) {
	// tag the otelhttp span with the route pattern
	handler := otelhttp.WithRouteTag(pattern, f)
	router.Handle(pattern, handler).Methods(append(methods, http.MethodOptions)...)
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.Use(corsMiddleware)

	handleFunc(router, "/api/accounts", h.handleAccounts, http.MethodGet)
	handleFunc(router, "/api/save-creds", h.handleSaveCredentials, http.MethodPost)
	handleFunc(router, "/api/dashboard-metrics", h.handleDashboardMetrics, http.MethodGet)
	handleFunc(router, "/api/validate-token", h.handleValidateToken, http.MethodPost)
	handleFunc(router, "/api/refresh-accounts", h.handleRefreshAccounts, http.MethodPost)
	handleFunc(router, "/ws", h.broadcaster.ServeWS, http.MethodGet)
}
