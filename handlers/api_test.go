package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opscloud/models"
)

func jsonRequest(method, path, body string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode API response: %v", err)
	}
	return resp
}

func TestAPIListUsers(t *testing.T) {
	src := &fakeSource{users: []models.User{{UID: "1", Name: "Ahmad", Role: models.RoleTerapis}}}
	useSource(src)

	w := httptest.NewRecorder()
	APIListUsersHandler(w, httptest.NewRequest("GET", "/api/v1/users", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	resp := decodeAPIResponse(t, w)
	if resp.Status != "success" {
		t.Errorf("Expected success status, got %q", resp.Status)
	}
}

func TestAPIAddUser(t *testing.T) {
	registerLimiter.Reset("192.0.2.1")
	src := &fakeSource{}
	useSource(src)

	w := httptest.NewRecorder()
	APIAddUserHandler(w, jsonRequest("POST", "/api/v1/users", `{"name":"Citra","role":"manager"}`, nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(src.addUserCalls) != 1 || src.addUserCalls[0].Role != models.RoleManager {
		t.Errorf("Unexpected registrations: %+v", src.addUserCalls)
	}
}

func TestAPIAddUserUnknownRoleDefaultsToTerapis(t *testing.T) {
	registerLimiter.Reset("192.0.2.1")
	src := &fakeSource{}
	useSource(src)

	w := httptest.NewRecorder()
	APIAddUserHandler(w, jsonRequest("POST", "/api/v1/users", `{"name":"Dewi","role":"admin"}`, nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	if src.addUserCalls[0].Role != models.RoleTerapis {
		t.Errorf("Expected terapis fallback, got %q", src.addUserCalls[0].Role)
	}
}

func TestAPIAddUserRateLimited(t *testing.T) {
	src := &fakeSource{}
	useSource(src)

	ip := "203.0.113.9"
	for i := 0; i < maxAttempts; i++ {
		registerLimiter.RecordFailure(ip)
	}

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/v1/users", `{"name":"Eka"}`, nil)
	req.RemoteAddr = ip + ":12345"
	APIAddUserHandler(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
	if len(src.addUserCalls) != 0 {
		t.Error("Expected no registration once the limiter blocks")
	}
}

func TestAPIToggleChecklistUnauthorized(t *testing.T) {
	src := &fakeSource{}
	useSource(src)

	w := httptest.NewRecorder()
	APIToggleChecklistHandler(w, jsonRequest("POST", "/api/v1/checklist", `{"item_id":"briefing","checked":true}`, nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	if len(src.updateCalls) != 0 {
		t.Error("Expected zero network calls without a session")
	}
}

func TestAPIToggleChecklist(t *testing.T) {
	src := &fakeSource{}
	useSource(src)
	cookies := sessionCookies(t, models.Session{Name: "Ahmad", Role: models.RoleTerapis})

	w := httptest.NewRecorder()
	APIToggleChecklistHandler(w, jsonRequest("POST", "/api/v1/checklist",
		`{"date":"2025-02-09","item_id":"briefing","checked":true}`, cookies))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(src.updateCalls) != 1 || src.updateCalls[0].Date != "2025-02-09" {
		t.Errorf("Unexpected writes: %+v", src.updateCalls)
	}

	entry := Board.Day("2025-02-09")["briefing"]
	if !entry.Checked || entry.By != "Ahmad" {
		t.Errorf("Unexpected board state: %+v", entry)
	}
}

func TestAPIListFinanceForbiddenForTerapis(t *testing.T) {
	src := &fakeSource{}
	useSource(src)
	cookies := sessionCookies(t, models.Session{Name: "Ahmad", Role: models.RoleTerapis})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/finance", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	APIListFinanceHandler(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
	if src.financeLists != 0 {
		t.Error("Expected zero network calls for a forbidden request")
	}
}

func TestAPIAddFinanceComputesProfit(t *testing.T) {
	src := &fakeSource{}
	useSource(src)
	cookies := sessionCookies(t, models.Session{Name: "Budi", Role: models.RoleManager})

	w := httptest.NewRecorder()
	APIAddFinanceHandler(w, jsonRequest("POST", "/api/v1/finance",
		`{"omzet":1000000,"ops":200000,"gaji":100000}`, cookies))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(src.financeAdds) != 1 || src.financeAdds[0].Profit != 700000 {
		t.Errorf("Unexpected saved records: %+v", src.financeAdds)
	}
}

func TestAPIDeleteFinanceForbiddenForTerapis(t *testing.T) {
	src := &fakeSource{}
	useSource(src)
	cookies := sessionCookies(t, models.Session{Name: "Ahmad", Role: models.RoleTerapis})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/v1/finance?id=7", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	APIDeleteFinanceHandler(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
	if len(src.deleteCalls) != 0 {
		t.Error("Expected zero network calls for a forbidden delete")
	}
}

func TestAPIListMasterDataRequiresCategory(t *testing.T) {
	src := &fakeSource{}
	useSource(src)

	w := httptest.NewRecorder()
	APIListMasterDataHandler(w, httptest.NewRequest("GET", "/api/v1/masterdata", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a category, got %d", w.Code)
	}
}

func TestAPIDeleteMasterDataDefaultsToMasterSheet(t *testing.T) {
	src := &fakeSource{}
	useSource(src)
	cookies := sessionCookies(t, models.Session{Name: "Budi", Role: models.RoleManager})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/v1/masterdata?id=3", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	APIDeleteMasterDataHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(src.deleteCalls) != 1 || src.deleteCalls[0] != "MasterData/3" {
		t.Errorf("Unexpected deletes: %v", src.deleteCalls)
	}
}
