package eventmodels

type LoginKeyRequestDTO struct {
	UserName string `json:"userName"`
	APIKey   string `json:"apiKey"`
}

type LoginKeyResponseDTO struct {
	Token        string  `json:"token"`
	Success      *bool   `json:"success"`
	ErrorCode    int     `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}

type ValidateResponseDTO struct {
	Success      bool    `json:"success"`
	NewToken     string  `json:"newToken"`
	ErrorCode    int     `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}

type AccountSearchRequestDTO struct {
	OnlyActiveAccounts bool `json:"onlyActiveAccounts"`
}

type AccountSearchResponseDTO struct {
	Accounts     AccountSnapshot `json:"accounts"`
	Success      *bool           `json:"success"`
	ErrorCode    int             `json:"errorCode"`
	ErrorMessage *string         `json:"errorMessage"`
}
