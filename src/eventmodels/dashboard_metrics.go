package eventmodels

type DashboardMetrics struct {
	NumAccounts    int         `json:"num_accounts"`
	TotalEquity    float64     `json:"total_equity"`
	NumActive      int         `json:"num_active"`
	NumDemo        int         `json:"num_demo"`
	TotalPositions float64     `json:"total_positions"`
	TotalPnL       float64     `json:"total_pnl"`
	MaxLossLimit   float64     `json:"max_loss_limit"`
	LastUpdated    interface{} `json:"last_updated"`
}
