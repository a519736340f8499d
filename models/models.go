package models

import (
	"encoding/json"
	"fmt"
)

// Roles as stored on the Users sheet.
const (
	RoleTerapis = "terapis"
	RoleManager = "manager"
)

type User struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// The script service hands uids back as whatever the sheet cell holds, which
// can be a number or a string depending on how the row was created.
func (u *User) UnmarshalJSON(b []byte) error {
	var raw struct {
		UID  any    `json:"uid"`
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	u.UID = flexID(raw.UID)
	u.Name = raw.Name
	u.Role = raw.Role
	return nil
}

// Session is the locally remembered identity of the acting user. There is no
// credential behind it; logging in is pure identity selection.
type Session struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (s Session) IsManager() bool {
	return s.Role == RoleManager
}

// ChecklistEntry records one toggle of a checklist item with attribution.
type ChecklistEntry struct {
	Checked bool   `json:"checked"`
	By      string `json:"by"`
	Time    string `json:"time"`
}

// ChecklistDay is one calendar date's worth of checklist state, keyed by
// item id. There is one record per date on the sheet.
type ChecklistDay struct {
	Date  string                    `json:"date"`
	Items map[string]ChecklistEntry `json:"items"`
}

type FinanceRecord struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date"`
	Omzet   int64  `json:"omzet"`
	Ops     int64  `json:"ops"`
	Gaji    int64  `json:"gaji"`
	Profit  int64  `json:"profit"`
	SavedBy string `json:"saved_by"`
	Note    string `json:"note"`
}

func (f *FinanceRecord) UnmarshalJSON(b []byte) error {
	type plain FinanceRecord
	var raw struct {
		plain
		ID any `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FinanceRecord(raw.plain)
	f.ID = flexID(raw.ID)
	return nil
}

// MasterDataItem is one entry of a category-scoped free-text list. The same
// shape backs checklist item definitions and the various note lists.
type MasterDataItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (m *MasterDataItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID      any    `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.ID = flexID(raw.ID)
	m.Content = raw.Content
	return nil
}

func flexID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		// JSON numbers; sheet row ids are integral
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
