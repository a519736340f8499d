package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"opscloud/models"
)

// DemoDeploymentID is the placeholder Apps Script deployment baked into the
// default configuration. A configured URL containing it means no real backend
// exists and every operation must be served from fixtures instead.
const DemoDeploymentID = "AKfycbyC0H_y7MQWzdEsDLEYr-0l3ZRsTC-IS23BgjzF3WG_k-3lycufZxJVItHFV2dJSdqR"

// DefaultScriptURL is used until the operator configures a real deployment.
const DefaultScriptURL = "https://script.google.com/macros/s/" + DemoDeploymentID + "/exec"

// IsDemoURL reports whether a script URL points at the placeholder
// deployment rather than a real one.
func IsDemoURL(scriptURL string) bool {
	return strings.Contains(scriptURL, DemoDeploymentID)
}

// Remote talks to the Apps Script web app. Operations are selected with an
// "action" query parameter; responses are JSON envelopes carrying either a
// data payload or an error message.
type Remote struct {
	ScriptURL string
	Client    *http.Client
}

func NewRemote(scriptURL string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{ScriptURL: scriptURL, Client: client}
}

type envelope struct {
	Error   string `json:"error"`
	Success *bool  `json:"success"`
}

// call performs one round trip and applies the shared failure taxonomy:
// transport errors, non-2xx statuses, an "error" field in the body and an
// explicit success=false acknowledgment all come back as errors. On success
// the raw body is returned for the caller to decode its own shape from.
func (r *Remote) call(ctx context.Context, action string, params url.Values, body any) ([]byte, error) {
	endpoint := r.ScriptURL + "?action=" + action
	if len(params) > 0 {
		endpoint += "&" + params.Encode()
	}

	method := http.MethodGet
	var reqBody io.Reader
	if body != nil {
		method = http.MethodPost
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		// text/plain keeps Apps Script from demanding a CORS preflight
		// it cannot answer.
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: http status %d", action, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", action, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%s: %s", action, env.Error)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("%s: rejected by script service", action)
	}
	return raw, nil
}

func (r *Remote) GetUsers(ctx context.Context) ([]models.User, error) {
	raw, err := r.call(ctx, "getUsers", nil, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []models.User `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("getUsers: decoding data: %w", err)
	}
	return out.Data, nil
}

func (r *Remote) AddUser(ctx context.Context, name, role string) error {
	_, err := r.call(ctx, "addUser", nil, map[string]string{"name": name, "role": role})
	return err
}

func (r *Remote) GetChecklist(ctx context.Context, date string) (models.ChecklistDay, error) {
	params := url.Values{"date": {date}}
	raw, err := r.call(ctx, "getChecklist", params, nil)
	if err != nil {
		return models.ChecklistDay{}, err
	}
	var day models.ChecklistDay
	if err := json.Unmarshal(raw, &day); err != nil {
		return models.ChecklistDay{}, fmt.Errorf("getChecklist: decoding data: %w", err)
	}
	if day.Items == nil {
		day.Items = map[string]models.ChecklistEntry{}
	}
	if day.Date == "" {
		day.Date = date
	}
	return day, nil
}

func (r *Remote) UpdateChecklist(ctx context.Context, upd ChecklistUpdate) error {
	_, err := r.call(ctx, "updateChecklist", nil, upd)
	return err
}

func (r *Remote) GetFinance(ctx context.Context) ([]models.FinanceRecord, error) {
	raw, err := r.call(ctx, "getFinance", nil, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []models.FinanceRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("getFinance: decoding data: %w", err)
	}
	return out.Data, nil
}

func (r *Remote) AddFinance(ctx context.Context, rec models.FinanceRecord) error {
	_, err := r.call(ctx, "addFinance", nil, rec)
	return err
}

func (r *Remote) GetMasterData(ctx context.Context, category string) ([]models.MasterDataItem, error) {
	params := url.Values{"category": {category}}
	raw, err := r.call(ctx, "getMasterData", params, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []models.MasterDataItem `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("getMasterData: decoding data: %w", err)
	}
	return out.Data, nil
}

func (r *Remote) AddMasterData(ctx context.Context, category, content string) (models.MasterDataItem, error) {
	body := map[string]string{
		"category":  category,
		"content":   content,
		"sheetName": MasterSheet,
	}
	raw, err := r.call(ctx, "addData", nil, body)
	if err != nil {
		return models.MasterDataItem{}, err
	}
	// The script may echo back the id it assigned to the new row.
	var out struct {
		ID any `json:"id"`
	}
	item := models.MasterDataItem{Content: content}
	if err := json.Unmarshal(raw, &out); err == nil {
		switch id := out.ID.(type) {
		case string:
			item.ID = id
		case float64:
			item.ID = fmt.Sprintf("%.0f", id)
		}
	}
	return item, nil
}

func (r *Remote) DeleteData(ctx context.Context, sheetName, id string) error {
	_, err := r.call(ctx, "deleteData", nil, map[string]string{"sheetName": sheetName, "id": id})
	return err
}
