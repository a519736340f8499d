package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"opscloud/auth"
	"opscloud/checklist"
	"opscloud/config"
	"opscloud/db"
	"opscloud/i18n"
	"opscloud/models"
	"opscloud/money"
	"opscloud/sheets"
)

// Data resolves the backing source per operation. Set once at startup.
var Data sheets.Provider

// Board is the local checklist state the operational view renders from.
var Board = checklist.NewBoard()

// The note lists all share one view; these are the tabs the shell offers.
var listPages = map[string]struct {
	Title       string
	Placeholder string
}{
	"cs":        {"Customer Service Scripts", "Tambah script/panduan CS baru..."},
	"marketing": {"Marketing Targets & Ideas", "Tambah target/campaign baru..."},
	"sdm":       {"SDM & HR Guidelines", "Tambah aturan/pengumuman baru..."},
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", IndexHandler)
	mux.HandleFunc("/login", LoginHandler)
	mux.HandleFunc("/logout", LogoutHandler)
	mux.HandleFunc("/dashboard", DashboardHandler)
	mux.HandleFunc("/operational", OperationalHandler)
	mux.HandleFunc("/operational/toggle", ToggleHandler)
	mux.HandleFunc("/finance", FinanceHandler)
	mux.HandleFunc("/finance/add", AddFinanceHandler)
	mux.HandleFunc("/finance/delete", DeleteFinanceHandler)
	mux.HandleFunc("/cs", ListPageHandler)
	mux.HandleFunc("/marketing", ListPageHandler)
	mux.HandleFunc("/sdm", ListPageHandler)
	mux.HandleFunc("/list/add", AddListItemHandler)
	mux.HandleFunc("/list/delete", DeleteListItemHandler)
	mux.HandleFunc("/settings", SettingsHandler)
	mux.HandleFunc("/settings/test", TestConnectionHandler)

	// JSON API
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			APIListUsersHandler(w, r)
		case http.MethodPost:
			APIAddUserHandler(w, r)
		default:
			sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: i18n.T(i18n.DetectLanguage(r), "MethodNotAllowed")})
		}
	})
	mux.HandleFunc("/api/v1/checklist", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			APIGetChecklistHandler(w, r)
		case http.MethodPost:
			APIToggleChecklistHandler(w, r)
		default:
			sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: i18n.T(i18n.DetectLanguage(r), "MethodNotAllowed")})
		}
	})
	mux.HandleFunc("/api/v1/finance", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			APIListFinanceHandler(w, r)
		case http.MethodPost:
			APIAddFinanceHandler(w, r)
		case http.MethodDelete:
			APIDeleteFinanceHandler(w, r)
		default:
			sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: i18n.T(i18n.DetectLanguage(r), "MethodNotAllowed")})
		}
	})
	mux.HandleFunc("/api/v1/masterdata", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			APIListMasterDataHandler(w, r)
		case http.MethodPost:
			APIAddMasterDataHandler(w, r)
		case http.MethodDelete:
			APIDeleteMasterDataHandler(w, r)
		default:
			sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: i18n.T(i18n.DetectLanguage(r), "MethodNotAllowed")})
		}
	})
}

func today() string {
	return time.Now().Format("2006-01-02")
}

var hariIndonesia = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
var bulanIndonesia = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember"}

func displayDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", hariIndonesia[t.Weekday()], t.Day(), bulanIndonesia[t.Month()-1], t.Year())
}

// triggerEvents sets an HX-Trigger header carrying named client events.
func triggerEvents(w http.ResponseWriter, events map[string]any) {
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

func toastEvent(r *http.Request, key string, isError bool) map[string]any {
	lang := i18n.DetectLanguage(r)
	return map[string]any{"message": i18n.T(lang, key), "isError": isError}
}

func toast(w http.ResponseWriter, r *http.Request, key string, isError bool) {
	triggerEvents(w, map[string]any{"toast": toastEvent(r, key, isError)})
}

func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	users, err := Data.Source().GetUsers(r.Context())
	data := map[string]any{"Users": users}
	if err != nil {
		log.Printf("Error loading users for login page: %v", err)
		data["UsersError"] = true
	}
	renderTemplate(w, r, "index.html", data)
}

// LoginHandler implements the two login flows: picking an existing user by
// uid, or registering a new name. An existing name never triggers an addUser
// call; a new one triggers exactly one before the session is set.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	src := Data.Source()
	users, err := src.GetUsers(r.Context())
	if err != nil {
		log.Printf("Error loading users during login: %v", err)
		toast(w, r, "LoadUsersFailed", true)
		return
	}

	if uid := r.FormValue("uid"); uid != "" {
		for _, u := range users {
			if u.UID == uid {
				auth.SetSession(w, r, models.Session{Name: u.Name, Role: u.Role})
				w.Header().Set("HX-Redirect", "/dashboard")
				return
			}
		}
	}

	name := strings.TrimSpace(r.FormValue("name"))
	role := r.FormValue("role")
	if role != models.RoleManager {
		role = models.RoleTerapis
	}
	if name == "" {
		toast(w, r, "NameRequired", true)
		return
	}

	for _, u := range users {
		if strings.EqualFold(u.Name, name) {
			auth.SetSession(w, r, models.Session{Name: u.Name, Role: u.Role})
			w.Header().Set("HX-Redirect", "/dashboard")
			return
		}
	}

	ip := getClientIP(r)
	if !registerLimiter.Allow(ip) {
		toast(w, r, "TooManyAttempts", true)
		return
	}
	if err := src.AddUser(r.Context(), name, role); err != nil {
		log.Printf("Error registering user: %v", err)
		toast(w, r, "RegisterFailed", true)
		return
	}
	registerLimiter.RecordFailure(ip)

	auth.SetSession(w, r, models.Session{Name: name, Role: role})
	w.Header().Set("HX-Redirect", "/dashboard")
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "dashboard.html", nil)
}

func OperationalHandler(w http.ResponseWriter, r *http.Request) {
	src := Data.Source()
	date := today()

	items, itemsErr := src.GetMasterData(r.Context(), "checklist")
	if itemsErr != nil {
		log.Printf("Error loading checklist items: %v", itemsErr)
	}

	day, dayErr := src.GetChecklist(r.Context(), date)
	if dayErr != nil {
		log.Printf("Error loading checklist state: %v", dayErr)
	} else {
		Board.Replace(date, day.Items)
	}

	renderTemplate(w, r, "operational.html", map[string]any{
		"Date":        date,
		"DisplayDate": displayDate(time.Now()),
		"Items":       items,
		"State":       Board.Day(date),
		"LoadError":   itemsErr != nil || dayErr != nil,
	})
}

// ToggleHandler is the optimistic checkbox write. Without a session it is
// rejected locally with a notice, before any network happens.
func ToggleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := auth.CurrentUser(r)
	if !ok {
		toast(w, r, "LoginRequired", true)
		return
	}

	itemID := r.FormValue("item_id")
	if itemID == "" {
		http.Error(w, "Missing item_id", http.StatusBadRequest)
		return
	}
	checked := r.FormValue("checked") == "true"

	_, err := Board.Toggle(r.Context(), Data.Source(), user, today(), itemID, checked)
	if err != nil {
		log.Printf("Error saving checklist toggle: %v", err)
		triggerEvents(w, map[string]any{
			"toast":            toastEvent(r, "SaveChecklistFailed", true),
			"checklistChanged": true,
		})
		return
	}
	triggerEvents(w, map[string]any{"checklistChanged": true})
}

func FinanceHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if auth.IsManager(r) {
		history, err := Data.Source().GetFinance(r.Context())
		if err != nil {
			log.Printf("Error loading finance history: %v", err)
			data["HistoryError"] = true
		}
		data["History"] = history
	}
	renderTemplate(w, r, "finance.html", data)
}

func parseAmount(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func AddFinanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := auth.CurrentUser(r)
	if !ok {
		toast(w, r, "LoginRequired", true)
		return
	}

	omzet := parseAmount(r.FormValue("omzet"))
	ops := parseAmount(r.FormValue("ops"))
	gaji := parseAmount(r.FormValue("gaji"))
	if omzet == 0 {
		toast(w, r, "OmzetZero", true)
		return
	}

	rec := models.FinanceRecord{
		Date:    today(),
		Omzet:   omzet,
		Ops:     ops,
		Gaji:    gaji,
		Profit:  omzet - (ops + gaji),
		SavedBy: user.Name,
		Note:    "Laporan Harian",
	}
	if err := Data.Source().AddFinance(r.Context(), rec); err != nil {
		log.Printf("Error saving finance report: %v", err)
		toast(w, r, "SaveReportFailed", true)
		return
	}
	triggerEvents(w, map[string]any{
		"toast":         toastEvent(r, "ReportSaved", false),
		"financeChanged": true,
	})
}

func DeleteFinanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !auth.IsManager(r) {
		toast(w, r, "DeleteManagerOnly", true)
		return
	}

	id := r.FormValue("id")
	if err := Data.Source().DeleteData(r.Context(), sheets.FinanceSheet, id); err != nil {
		log.Printf("Error deleting finance report: %v", err)
		toast(w, r, "DeleteFailed", true)
		return
	}
	triggerEvents(w, map[string]any{
		"toast":         toastEvent(r, "ReportDeleted", false),
		"financeChanged": true,
	})
}

func ListPageHandler(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimPrefix(r.URL.Path, "/")
	page, ok := listPages[category]
	if !ok {
		http.NotFound(w, r)
		return
	}

	items, err := Data.Source().GetMasterData(r.Context(), category)
	if err != nil {
		log.Printf("Error loading %s list: %v", category, err)
	}
	renderTemplate(w, r, "list.html", map[string]any{
		"Category":    category,
		"Title":       page.Title,
		"Placeholder": page.Placeholder,
		"Items":       items,
		"LoadError":   err != nil,
	})
}

func AddListItemHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := auth.CurrentUser(r); !ok {
		toast(w, r, "LoginRequired", true)
		return
	}

	category := r.FormValue("category")
	content := strings.TrimSpace(r.FormValue("content"))
	if category == "" || content == "" {
		http.Error(w, "Missing category or content", http.StatusBadRequest)
		return
	}

	if _, err := Data.Source().AddMasterData(r.Context(), category, content); err != nil {
		log.Printf("Error adding %s item: %v", category, err)
		toast(w, r, "AddItemFailed", true)
		return
	}
	triggerEvents(w, map[string]any{
		"toast":       toastEvent(r, "ItemAdded", false),
		"listChanged": true,
	})
}

func DeleteListItemHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !auth.IsManager(r) {
		toast(w, r, "DeleteManagerOnly", true)
		return
	}

	id := r.FormValue("id")
	if err := Data.Source().DeleteData(r.Context(), sheets.MasterSheet, id); err != nil {
		log.Printf("Error deleting list item: %v", err)
		toast(w, r, "DeleteFailed", true)
		return
	}
	triggerEvents(w, map[string]any{
		"toast":       toastEvent(r, "ItemDeleted", false),
		"listChanged": true,
	})
}

// ScriptURL is the single place the configured deployment is read from: the
// saved setting wins, the config file default applies otherwise.
func ScriptURL() string {
	if u := db.GetSetting(db.SettingScriptURL); u != "" {
		return u
	}
	return config.AppConfig.ScriptURL
}

func SettingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		url := strings.TrimSpace(r.FormValue("script_url"))
		if err := db.SetSetting(db.SettingScriptURL, url); err != nil {
			log.Printf("Error saving script URL: %v", err)
			toast(w, r, "InternalServerError", true)
			return
		}
		toast(w, r, "URLSaved", false)
		return
	}
	renderTemplate(w, r, "settings.html", map[string]any{"ScriptURL": ScriptURL()})
}

// TestConnectionHandler saves the submitted URL first, then probes it with a
// getUsers call through the resolver so the test exercises the same path the
// views use.
func TestConnectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lang := i18n.DetectLanguage(r)

	if url := strings.TrimSpace(r.FormValue("script_url")); url != "" {
		if err := db.SetSetting(db.SettingScriptURL, url); err != nil {
			log.Printf("Error saving script URL: %v", err)
		}
	}

	if _, err := Data.Source().GetUsers(r.Context()); err != nil {
		log.Printf("Connection test failed: %v", err)
		toast(w, r, "ConnectionFailed", true)
		fmt.Fprintf(w, `<span class="status error">%s</span>`, template.HTMLEscapeString(i18n.T(lang, "ConnectionFailed")))
		return
	}
	toast(w, r, "ConnectionOK", false)
	fmt.Fprintf(w, `<span class="status ok">%s</span>`, template.HTMLEscapeString(i18n.T(lang, "ConnectionOK")))
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	lang := i18n.DetectLanguage(r)

	funcMap := template.FuncMap{
		"T": func(key string) string {
			return i18n.T(lang, key)
		},
		"rupiah": money.Rupiah,
	}

	tmpl, err := template.New(name).Funcs(funcMap).ParseFiles("templates/layout.html", "templates/"+name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m, ok := data.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	if _, exists := m["AppName"]; !exists {
		m["AppName"] = config.AppConfig.AppName
	}
	m["Lang"] = lang
	m["Path"] = r.URL.Path
	m["csrfField"] = csrf.TemplateField(r)
	if user, ok := auth.CurrentUser(r); ok {
		m["User"] = user
	}

	tmpl.ExecuteTemplate(w, "layout", m)
}
