package sheets

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"opscloud/models"
)

// Demo serves the whole app without a configured backend. The fixtures are
// deterministic; writes are acknowledged and kept in memory until restart so
// the UI behaves like the real thing. No operation ever touches the network
// and none ever fails.
type Demo struct {
	mu      sync.Mutex
	users   []models.User
	master  map[string][]models.MasterDataItem
	days    map[string]models.ChecklistDay
	finance []models.FinanceRecord
}

func NewDemo() *Demo {
	return &Demo{
		users: []models.User{
			{UID: "1", Name: "Ahmad", Role: models.RoleTerapis},
			{UID: "2", Name: "Budi", Role: models.RoleManager},
		},
		master: map[string][]models.MasterDataItem{
			"checklist": {
				{ID: "1", Content: "Sapu & Pel seluruh area"},
				{ID: "2", Content: "Cek Stok Alkohol"},
			},
		},
		days: map[string]models.ChecklistDay{},
		finance: []models.FinanceRecord{
			{
				ID:      "1",
				Date:    "2025-02-09",
				Omzet:   1000000,
				Ops:     300000,
				Gaji:    200000,
				Profit:  500000,
				SavedBy: "Budi",
				Note:    "Contoh laporan",
			},
		},
	}
}

func (d *Demo) GetUsers(ctx context.Context) ([]models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.User, len(d.users))
	copy(out, d.users)
	return out, nil
}

func (d *Demo) AddUser(ctx context.Context, name, role string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, models.User{UID: uuid.NewString(), Name: name, Role: role})
	return nil
}

func (d *Demo) GetChecklist(ctx context.Context, date string) (models.ChecklistDay, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day, ok := d.days[date]
	if !ok {
		// First look at a date shows one pre-checked sample entry.
		day = models.ChecklistDay{
			Date: date,
			Items: map[string]models.ChecklistEntry{
				"1": {Checked: true, By: "Ahmad", Time: "08:00"},
			},
		}
		d.days[date] = day
	}
	out := models.ChecklistDay{Date: day.Date, Items: make(map[string]models.ChecklistEntry, len(day.Items))}
	for id, e := range day.Items {
		out.Items[id] = e
	}
	return out, nil
}

func (d *Demo) UpdateChecklist(ctx context.Context, upd ChecklistUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	day, ok := d.days[upd.Date]
	if !ok {
		day = models.ChecklistDay{Date: upd.Date, Items: map[string]models.ChecklistEntry{}}
	}
	day.Items[upd.ItemID] = models.ChecklistEntry{Checked: upd.Checked, By: upd.By, Time: upd.Time}
	d.days[upd.Date] = day
	return nil
}

func (d *Demo) GetFinance(ctx context.Context) ([]models.FinanceRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.FinanceRecord, len(d.finance))
	copy(out, d.finance)
	return out, nil
}

func (d *Demo) AddFinance(ctx context.Context, rec models.FinanceRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec.ID = uuid.NewString()
	d.finance = append(d.finance, rec)
	return nil
}

func (d *Demo) GetMasterData(ctx context.Context, category string) ([]models.MasterDataItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := d.master[category]
	out := make([]models.MasterDataItem, len(items))
	copy(out, items)
	return out, nil
}

func (d *Demo) AddMasterData(ctx context.Context, category, content string) (models.MasterDataItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item := models.MasterDataItem{ID: uuid.NewString(), Content: content}
	d.master[category] = append(d.master[category], item)
	return item, nil
}

func (d *Demo) DeleteData(ctx context.Context, sheetName, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sheetName == FinanceSheet {
		for i, rec := range d.finance {
			if rec.ID == id {
				d.finance = append(d.finance[:i], d.finance[i+1:]...)
				break
			}
		}
		return nil
	}
	for category, items := range d.master {
		for i, item := range items {
			if item.ID == id {
				d.master[category] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}
