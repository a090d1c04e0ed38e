package eventmodels

import "encoding/json"

type RealtimeEventName string

const (
	SubscribeAccountsEvent  RealtimeEventName = "subscribe_accounts"
	RefreshAccountsEvent    RealtimeEventName = "refresh_accounts"
	AccountsUpdateEvent     RealtimeEventName = "accounts_update"
	AccountsSyncFailedEvent RealtimeEventName = "accounts_sync_failed"
)

// RealtimeMessage is the envelope for every websocket frame in both directions.
type RealtimeMessage struct {
	Event RealtimeEventName `json:"event"`
	Data  json.RawMessage   `json:"data,omitempty"`
}

type RefreshAccountsRequestDTO struct {
	OnlyActive *bool `json:"onlyActive"`
}

type SyncFailedDTO struct {
	Error string `json:"error"`
}

func NewRealtimeMessage(event RealtimeEventName, data interface{}) (*RealtimeMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &RealtimeMessage{Event: event, Data: raw}, nil
}
