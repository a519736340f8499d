package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opscloud/models"
)

// scriptStub plays the Apps Script web app, counting calls per action.
type scriptStub struct {
	calls     map[string]int
	responses map[string]string
	status    int
}

func newScriptStub() *scriptStub {
	return &scriptStub{
		calls:  make(map[string]int),
		status: http.StatusOK,
		responses: map[string]string{
			"getUsers":        `{"data":[{"uid":"1","name":"Ahmad","role":"terapis"},{"uid":2,"name":"Budi","role":"manager"}]}`,
			"addUser":         `{"success":true}`,
			"getChecklist":    `{"date":"2025-02-09","items":{"clean_floor":{"checked":true,"by":"Ahmad","time":"08:00"}}}`,
			"updateChecklist": `{"success":true}`,
			"getFinance":      `{"data":[{"id":1,"date":"2025-02-09","omzet":1000000,"profit":500000,"saved_by":"Budi"}]}`,
			"addFinance":      `{"success":true}`,
			"getMasterData":   `{"data":[{"id":"1","content":"Sapu & Pel seluruh area"}]}`,
			"addData":         `{"success":true,"id":1739000000000}`,
			"deleteData":      `{"success":true}`,
		},
	}
}

func (s *scriptStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		s.calls[action]++
		w.WriteHeader(s.status)
		w.Write([]byte(s.responses[action]))
	}
}

func TestRemoteGetUsers(t *testing.T) {
	stub := newScriptStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	users, err := remote.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[1].UID != "2" || users[1].Role != models.RoleManager {
		t.Errorf("Unexpected second user: %+v", users[1])
	}
}

func TestRemoteGetChecklist(t *testing.T) {
	stub := newScriptStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	day, err := remote.GetChecklist(context.Background(), "2025-02-09")
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}
	entry, ok := day.Items["clean_floor"]
	if !ok || !entry.Checked || entry.By != "Ahmad" {
		t.Errorf("Unexpected checklist state: %+v", day.Items)
	}
}

func TestRemoteGetChecklistEmptyDay(t *testing.T) {
	stub := newScriptStub()
	stub.responses["getChecklist"] = `{"date":""}`
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	day, err := remote.GetChecklist(context.Background(), "2025-03-01")
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}
	if day.Items == nil {
		t.Error("Expected non-nil items map for an untouched day")
	}
	if day.Date != "2025-03-01" {
		t.Errorf("Expected requested date to be filled in, got %q", day.Date)
	}
}

func TestRemoteErrorEnvelope(t *testing.T) {
	stub := newScriptStub()
	stub.responses["getUsers"] = `{"error":"Sheet Users not found"}`
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	_, err := remote.GetUsers(context.Background())
	if err == nil {
		t.Fatal("Expected error from error envelope")
	}
	if want := "Sheet Users not found"; !strings.Contains(err.Error(), want) {
		t.Errorf("Expected error to carry %q, got %q", want, err.Error())
	}
}

func TestRemoteHTTPStatusError(t *testing.T) {
	stub := newScriptStub()
	stub.status = http.StatusInternalServerError
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	if _, err := remote.GetFinance(context.Background()); err == nil {
		t.Fatal("Expected error for non-2xx status")
	}
}

func TestRemoteSuccessFalse(t *testing.T) {
	stub := newScriptStub()
	stub.responses["updateChecklist"] = `{"success":false}`
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	err := remote.UpdateChecklist(context.Background(), ChecklistUpdate{Date: "2025-02-09", ItemID: "x", Checked: true})
	if err == nil {
		t.Fatal("Expected error for success=false acknowledgment")
	}
}

func TestRemoteTransportError(t *testing.T) {
	// Point at a closed server
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	remote := NewRemote(url, nil)
	if _, err := remote.GetUsers(context.Background()); err == nil {
		t.Fatal("Expected transport error")
	}
}

func TestRemoteAddMasterDataEchoesID(t *testing.T) {
	stub := newScriptStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	item, err := remote.AddMasterData(context.Background(), "cs", "Script sapaan")
	if err != nil {
		t.Fatalf("AddMasterData failed: %v", err)
	}
	if item.ID != "1739000000000" {
		t.Errorf("Expected echoed id 1739000000000, got %q", item.ID)
	}
	if item.Content != "Script sapaan" {
		t.Errorf("Expected content to round-trip, got %q", item.Content)
	}
}

// Every operation must perform exactly one HTTP call; the module never
// retries and never caches.
func TestRemoteOneCallPerOperation(t *testing.T) {
	stub := newScriptStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client())
	ctx := context.Background()

	ops := []struct {
		action string
		run    func() error
	}{
		{"getUsers", func() error { _, err := remote.GetUsers(ctx); return err }},
		{"addUser", func() error { return remote.AddUser(ctx, "Citra", "terapis") }},
		{"getChecklist", func() error { _, err := remote.GetChecklist(ctx, "2025-02-09"); return err }},
		{"updateChecklist", func() error {
			return remote.UpdateChecklist(ctx, ChecklistUpdate{Date: "2025-02-09", ItemID: "x", Checked: true, By: "Ahmad", Time: "08:00"})
		}},
		{"getFinance", func() error { _, err := remote.GetFinance(ctx); return err }},
		{"addFinance", func() error { return remote.AddFinance(ctx, models.FinanceRecord{Date: "2025-02-09", Omzet: 1}) }},
		{"getMasterData", func() error { _, err := remote.GetMasterData(ctx, "cs"); return err }},
		{"addData", func() error { _, err := remote.AddMasterData(ctx, "cs", "x"); return err }},
		{"deleteData", func() error { return remote.DeleteData(ctx, MasterSheet, "1") }},
	}

	for _, op := range ops {
		if err := op.run(); err != nil {
			t.Fatalf("%s failed: %v", op.action, err)
		}
		if got := stub.calls[op.action]; got != 1 {
			t.Errorf("%s: expected exactly 1 call, got %d", op.action, got)
		}
	}
}
