package eventservices

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

var reportAccounts = eventmodels.AccountSnapshot{
	{"id": float64(1), "name": "Combine 50K", "status": "active", "balance": float64(51234.5), "dailyPnL": float64(-120)},
	{"id": float64(2), "name": "Practice", "status": "demo", "balance": float64(1000)},
}

func TestRenderAccountsTable(t *testing.T) {
	var out strings.Builder

	RenderAccountsTable(&out, reportAccounts)

	table := out.String()
	require.Contains(t, table, "Combine 50K")
	require.Contains(t, table, "$51,234.50")
	require.Contains(t, table, "$52,234.50")
}

func TestExportAccountsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "accounts.csv")

	require.NoError(t, ExportAccountsCSV(path, reportAccounts))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,name,status,balance,daily_pnl,max_loss_limit,positions", lines[0])
	require.Equal(t, "1,Combine 50K,active,51234.5,-120,0,0", lines[1])
}
