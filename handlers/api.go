package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"opscloud/auth"
	"opscloud/i18n"
	"opscloud/models"
	"opscloud/sheets"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func APIListUsersHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	users, err := Data.Source().GetUsers(r.Context())
	if err != nil {
		log.Printf("Error listing users (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "LoadUsersFailed")})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: users})
}

func APIAddUserHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	ip := getClientIP(r)
	if !registerLimiter.Allow(ip) {
		sendJSONResponse(w, http.StatusTooManyRequests, APIResponse{Status: "error", Message: i18n.T(lang, "TooManyAttempts")})
		return
	}

	var input struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "NameRequired")})
		return
	}
	if input.Role != models.RoleManager {
		input.Role = models.RoleTerapis
	}

	if err := Data.Source().AddUser(r.Context(), input.Name, input.Role); err != nil {
		log.Printf("Error adding user (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "RegisterFailed")})
		return
	}
	// Record the registration to limit creation rate per IP
	registerLimiter.RecordFailure(ip)

	sendJSONResponse(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   map[string]string{"name": input.Name, "role": input.Role},
	})
}

func APIGetChecklistHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = today()
	}

	day, err := Data.Source().GetChecklist(r.Context(), date)
	if err != nil {
		log.Printf("Error loading checklist (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "LoadChecklistFailed")})
		return
	}
	Board.Replace(date, day.Items)
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: day})
}

func APIToggleChecklistHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	user, ok := auth.CurrentUser(r)
	if !ok {
		sendJSONResponse(w, http.StatusUnauthorized, APIResponse{Status: "error", Message: i18n.T(lang, "LoginRequired")})
		return
	}

	var input struct {
		Date    string `json:"date"`
		ItemID  string `json:"item_id"`
		Checked bool   `json:"checked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	if input.ItemID == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	if input.Date == "" {
		input.Date = today()
	}

	entry, err := Board.Toggle(r.Context(), Data.Source(), user, input.Date, input.ItemID, input.Checked)
	if err != nil {
		log.Printf("Error saving checklist toggle (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "SaveChecklistFailed"), Data: entry})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: entry})
}

func APIListFinanceHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	if !auth.IsManager(r) {
		sendJSONResponse(w, http.StatusForbidden, APIResponse{Status: "error", Message: i18n.T(lang, "HistoryManagerOnly")})
		return
	}

	history, err := Data.Source().GetFinance(r.Context())
	if err != nil {
		log.Printf("Error loading finance (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "LoadFinanceFailed")})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: history})
}

func APIAddFinanceHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	user, ok := auth.CurrentUser(r)
	if !ok {
		sendJSONResponse(w, http.StatusUnauthorized, APIResponse{Status: "error", Message: i18n.T(lang, "LoginRequired")})
		return
	}

	var input struct {
		Date  string `json:"date"`
		Omzet int64  `json:"omzet"`
		Ops   int64  `json:"ops"`
		Gaji  int64  `json:"gaji"`
		Note  string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	if input.Omzet == 0 {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "OmzetZero")})
		return
	}
	if input.Date == "" {
		input.Date = today()
	}

	rec := models.FinanceRecord{
		Date:    input.Date,
		Omzet:   input.Omzet,
		Ops:     input.Ops,
		Gaji:    input.Gaji,
		Profit:  input.Omzet - (input.Ops + input.Gaji),
		SavedBy: user.Name,
		Note:    input.Note,
	}
	if err := Data.Source().AddFinance(r.Context(), rec); err != nil {
		log.Printf("Error adding finance (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "SaveReportFailed")})
		return
	}
	sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success", Data: rec})
}

func APIDeleteFinanceHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	if !auth.IsManager(r) {
		sendJSONResponse(w, http.StatusForbidden, APIResponse{Status: "error", Message: i18n.T(lang, "DeleteManagerOnly")})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	if err := Data.Source().DeleteData(r.Context(), sheets.FinanceSheet, id); err != nil {
		log.Printf("Error deleting finance (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "DeleteFailed")})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func APIListMasterDataHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	category := r.URL.Query().Get("category")
	if category == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}

	items, err := Data.Source().GetMasterData(r.Context(), category)
	if err != nil {
		log.Printf("Error listing master data (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "LoadItemsFailed")})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: items})
}

func APIAddMasterDataHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	if _, ok := auth.CurrentUser(r); !ok {
		sendJSONResponse(w, http.StatusUnauthorized, APIResponse{Status: "error", Message: i18n.T(lang, "LoginRequired")})
		return
	}

	var input struct {
		Category string `json:"category"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	input.Content = strings.TrimSpace(input.Content)
	if input.Category == "" || input.Content == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}

	item, err := Data.Source().AddMasterData(r.Context(), input.Category, input.Content)
	if err != nil {
		log.Printf("Error adding master data (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "AddItemFailed")})
		return
	}
	sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success", Data: item})
}

func APIDeleteMasterDataHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)
	if !auth.IsManager(r) {
		sendJSONResponse(w, http.StatusForbidden, APIResponse{Status: "error", Message: i18n.T(lang, "DeleteManagerOnly")})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, "InvalidRequestBody")})
		return
	}
	sheet := r.URL.Query().Get("sheet")
	if sheet == "" {
		sheet = sheets.MasterSheet
	}
	if err := Data.Source().DeleteData(r.Context(), sheet, id); err != nil {
		log.Printf("Error deleting master data (API): %v", err)
		sendJSONResponse(w, http.StatusBadGateway, APIResponse{Status: "error", Message: i18n.T(lang, "DeleteFailed")})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}
