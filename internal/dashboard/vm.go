package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-erp/meridian-front/internal/erp"
)

// moneyPrinter groups thousands the way the tables display amounts.
var moneyPrinter = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

// SummaryVM is the landing-page summary with display-ready amounts.
type SummaryVM struct {
	SalesToday          float64 `json:"sales_today"`
	SalesTodayLabel     string  `json:"sales_today_label"`
	PurchasesMonth      float64 `json:"purchases_month"`
	PurchasesMonthLabel string  `json:"purchases_month_label"`
	LowStockItems       int     `json:"low_stock_items"`
	CashBalance         float64 `json:"cash_balance"`
	CashBalanceLabel    string  `json:"cash_balance_label"`
}

func summaryVM(s erp.DashboardSummary) SummaryVM {
	return SummaryVM{
		SalesToday:          s.SalesToday,
		SalesTodayLabel:     formatMoney(s.SalesToday),
		PurchasesMonth:      s.PurchasesMonth,
		PurchasesMonthLabel: formatMoney(s.PurchasesMonth),
		LowStockItems:       s.LowStockItems,
		CashBalance:         s.CashBalance,
		CashBalanceLabel:    formatMoney(s.CashBalance),
	}
}
