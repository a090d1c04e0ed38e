package eventservices

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

type AccountRow struct {
	ID           string  `csv:"id"`
	Name         string  `csv:"name"`
	Status       string  `csv:"status"`
	Balance      float64 `csv:"balance"`
	DailyPnL     float64 `csv:"daily_pnl"`
	MaxLossLimit float64 `csv:"max_loss_limit"`
	Positions    float64 `csv:"positions"`
}

func NewAccountRows(accounts eventmodels.AccountSnapshot) []*AccountRow {
	rows := make([]*AccountRow, 0, len(accounts))
	for _, a := range accounts {
		id := ""
		if v := a.Get("id"); v != nil {
			id = fmt.Sprintf("%v", v)
		}

		rows = append(rows, &AccountRow{
			ID:           id,
			Name:         a.String("name"),
			Status:       a.String("status"),
			Balance:      a.Float("balance"),
			DailyPnL:     a.Float("dailyPnL"),
			MaxLossLimit: a.Float("maxLossLimit"),
			Positions:    a.Float("positions"),
		})
	}

	return rows
}

// RenderAccountsTable writes the accounts and their dashboard totals as a table.
func RenderAccountsTable(w io.Writer, accounts eventmodels.AccountSnapshot) {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Status", "Balance", "Daily PnL", "Max Loss"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, row := range NewAccountRows(accounts) {
		table.Append([]string{
			row.ID,
			row.Name,
			row.Status,
			p.Sprintf("$%.2f", row.Balance),
			p.Sprintf("$%.2f", row.DailyPnL),
			p.Sprintf("$%.2f", row.MaxLossLimit),
		})
	}

	metrics := ComputeDashboardMetrics(accounts)
	table.SetFooter([]string{
		"",
		p.Sprintf("%d accounts", metrics.NumAccounts),
		p.Sprintf("%d active", metrics.NumActive),
		p.Sprintf("$%.2f", metrics.TotalEquity),
		p.Sprintf("$%.2f", metrics.TotalPnL),
		p.Sprintf("$%.2f", metrics.MaxLossLimit),
	})

	table.Render()
}

// ExportAccountsCSV writes one row per account to path, creating its directory if needed.
func ExportAccountsCSV(path string, accounts eventmodels.AccountSnapshot) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("ExportAccountsCSV: failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ExportAccountsCSV: failed to create file: %w", err)
	}
	defer file.Close()

	rows := NewAccountRows(accounts)

	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(file))
	if err := gocsv.MarshalCSV(&rows, writer); err != nil {
		return fmt.Errorf("ExportAccountsCSV: failed to write to file: %w", err)
	}

	return nil
}
