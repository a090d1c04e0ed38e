package eventservices

import (
	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

func sumField(accounts eventmodels.AccountSnapshot, key string) float64 {
	if len(accounts) == 0 {
		return 0
	}

	data := make(stats.Float64Data, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, a.Float(key))
	}

	sum, err := stats.Sum(data)
	if err != nil {
		return 0
	}

	return sum
}

func countStatus(accounts eventmodels.AccountSnapshot, status string) int {
	n := 0
	for _, a := range accounts {
		if a.String("status") == status {
			n++
		}
	}

	return n
}

// ComputeDashboardMetrics aggregates the cached accounts for display.
// last_updated is taken from the first account.
func ComputeDashboardMetrics(accounts eventmodels.AccountSnapshot) eventmodels.DashboardMetrics {
	metrics := eventmodels.DashboardMetrics{
		NumAccounts:    len(accounts),
		TotalEquity:    sumField(accounts, "balance"),
		NumActive:      countStatus(accounts, "active"),
		NumDemo:        countStatus(accounts, "demo"),
		TotalPositions: sumField(accounts, "positions"),
		TotalPnL:       sumField(accounts, "dailyPnL"),
		MaxLossLimit:   sumField(accounts, "maxLossLimit"),
	}

	if len(accounts) > 0 {
		metrics.LastUpdated = accounts[0].Get("lastUpdated")
	}

	return metrics
}
