// Package checklist keeps the locally rendered state of the daily checklist
// and implements the optimistic toggle against a data source.
package checklist

import (
	"context"
	"sync"
	"time"

	"opscloud/models"
	"opscloud/sheets"
)

// Board holds per-date checklist state as last rendered. It is the local
// copy the optimistic toggle mutates before the confirming write lands.
type Board struct {
	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time

	mu   sync.Mutex
	days map[string]map[string]models.ChecklistEntry
}

func NewBoard() *Board {
	return &Board{days: make(map[string]map[string]models.ChecklistEntry)}
}

// Replace swaps in freshly fetched state for one date.
func (b *Board) Replace(date string, items map[string]models.ChecklistEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	day := make(map[string]models.ChecklistEntry, len(items))
	for id, e := range items {
		day[id] = e
	}
	b.days[date] = day
}

// Day returns a copy of the state for one date.
func (b *Board) Day(date string) map[string]models.ChecklistEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]models.ChecklistEntry, len(b.days[date]))
	for id, e := range b.days[date] {
		out[id] = e
	}
	return out
}

// Toggle applies the new value immediately, attributed to the acting user at
// the current wall-clock time, then issues the confirming write. On failure
// only the checked bit is flipped back; the optimistic attribution stays as
// written. The caller must have rejected sessionless toggles already.
func (b *Board) Toggle(ctx context.Context, src sheets.Source, user models.Session, date, itemID string, checked bool) (models.ChecklistEntry, error) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	entry := models.ChecklistEntry{
		Checked: checked,
		By:      user.Name,
		Time:    now().Format("15:04:05"),
	}
	b.set(date, itemID, entry)

	err := src.UpdateChecklist(ctx, sheets.ChecklistUpdate{
		Date:    date,
		ItemID:  itemID,
		Checked: checked,
		By:      entry.By,
		Time:    entry.Time,
	})
	if err != nil {
		entry.Checked = !checked
		b.set(date, itemID, entry)
		return entry, err
	}
	return entry, nil
}

func (b *Board) set(date, itemID string, entry models.ChecklistEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	day, ok := b.days[date]
	if !ok {
		day = make(map[string]models.ChecklistEntry)
		b.days[date] = day
	}
	day[itemID] = entry
}
