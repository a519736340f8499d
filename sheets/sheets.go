// Package sheets is the data access layer. All business data lives on a
// remote spreadsheet behind an Apps Script web app; this package maps the
// app's logical operations onto that service, or onto in-memory fixtures
// when no real deployment is configured.
package sheets

import (
	"context"

	"opscloud/models"
)

// Sheet names the script service expects in delete calls. The generic
// category lists all share one sheet; finance records have their own.
const (
	MasterSheet  = "MasterData"
	FinanceSheet = "Finance"
)

// Source is one backing store for the app's data. The remote script service
// and the demo fixtures both implement it; callers never branch on the mode.
// Every operation is a single request/response with no retry and no cache;
// failures come back as errors carrying the original message.
type Source interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	AddUser(ctx context.Context, name, role string) error
	GetChecklist(ctx context.Context, date string) (models.ChecklistDay, error)
	UpdateChecklist(ctx context.Context, upd ChecklistUpdate) error
	GetFinance(ctx context.Context) ([]models.FinanceRecord, error)
	AddFinance(ctx context.Context, rec models.FinanceRecord) error
	GetMasterData(ctx context.Context, category string) ([]models.MasterDataItem, error)
	AddMasterData(ctx context.Context, category, content string) (models.MasterDataItem, error)
	DeleteData(ctx context.Context, sheetName, id string) error
}

// ChecklistUpdate is the payload of one checklist toggle write.
type ChecklistUpdate struct {
	Date    string `json:"date"`
	ItemID  string `json:"item_id"`
	Checked bool   `json:"checked"`
	By      string `json:"by"`
	Time    string `json:"time"`
}

// Provider yields the Source to use for one operation.
type Provider interface {
	Source() Source
}
