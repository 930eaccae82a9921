package stores

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
)

const (
	vivoEndpoint = "https://developer-api.vivo.com.cn/router/rest"

	vivoMethodUpdateApp   = "app.update.app"
	vivoMethodQueryTask   = "app.query.task.status"
	vivoMethodQueryDetail = "app.query.details"

	// Task status codes on the Vivo developer API.
	vivoStatusPassed   = 3
	vivoStatusRejected = 4
)

// VivoAdapter speaks the Vivo developer REST API: form-encoded POSTs with an
// HMAC-SHA256 signature over the sorted parameter string.
type VivoAdapter struct {
	Client   *http.Client
	Endpoint string
}

func NewVivoAdapter(client *http.Client) *VivoAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &VivoAdapter{Client: client, Endpoint: vivoEndpoint}
}

type vivoResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID      string `json:"taskId"`
		Status      int    `json:"status"`
		Message     string `json:"message"`
		VersionName string `json:"versionName"`
	} `json:"data"`
}

func (a *VivoAdapter) Submit(ctx context.Context, storeApp entities.StoreApp, release ports.ReleaseInfo) (string, error) {
	params := map[string]string{
		"packageName": storeApp.PackageName,
		"versionName": release.Version,
		"apkUrl":      release.StoragePath,
		"onlineType":  "1",
	}
	resp, err := a.call(ctx, storeApp, vivoMethodUpdateApp, params)
	if err != nil {
		return "", err
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("vivo submit rejected: code %d: %s", resp.Code, resp.Msg)
	}
	return resp.Data.TaskID, nil
}

func (a *VivoAdapter) SubmitResult(ctx context.Context, storeApp entities.StoreApp, taskID string) (ports.ReviewStatus, string, error) {
	params := map[string]string{
		"packageName": storeApp.PackageName,
		"taskId":      taskID,
	}
	resp, err := a.call(ctx, storeApp, vivoMethodQueryTask, params)
	if err != nil {
		return 0, "", err
	}
	if resp.Code != 0 {
		return 0, "", fmt.Errorf("vivo task query failed: code %d: %s", resp.Code, resp.Msg)
	}
	switch resp.Data.Status {
	case vivoStatusPassed:
		return ports.ReviewPassed, resp.Data.Message, nil
	case vivoStatusRejected:
		return ports.ReviewRejected, resp.Data.Message, nil
	default:
		return ports.ReviewPending, resp.Data.Message, nil
	}
}

func (a *VivoAdapter) CurrentVersion(ctx context.Context, storeApp entities.StoreApp) (string, error) {
	params := map[string]string{"packageName": storeApp.PackageName}
	resp, err := a.call(ctx, storeApp, vivoMethodQueryDetail, params)
	if err != nil {
		return "", err
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("vivo detail query failed: code %d: %s", resp.Code, resp.Msg)
	}
	return resp.Data.VersionName, nil
}

func (a *VivoAdapter) call(ctx context.Context, storeApp entities.StoreApp, method string, params map[string]string) (vivoResponse, error) {
	form := map[string]string{
		"access_key":  storeApp.AccessKey,
		"timestamp":   strconv.FormatInt(time.Now().UnixMilli(), 10),
		"method":      method,
		"v":           "1.0",
		"sign_method": "HMAC-SHA256",
		"format":      "json",
	}
	for key, value := range params {
		form[key] = value
	}
	form["sign"] = signVivo(form, storeApp.AccessSecret)

	body := url.Values{}
	for key, value := range form {
		body.Set(key, value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, strings.NewReader(body.Encode()))
	if err != nil {
		return vivoResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := a.Client.Do(req)
	if err != nil {
		return vivoResponse{}, domainerrors.Transient(err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 500 {
		return vivoResponse{}, domainerrors.Transient(fmt.Errorf("vivo api status %d", httpResp.StatusCode))
	}
	if httpResp.StatusCode != http.StatusOK {
		return vivoResponse{}, fmt.Errorf("vivo api status %d", httpResp.StatusCode)
	}
	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return vivoResponse{}, domainerrors.Transient(err)
	}
	var resp vivoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return vivoResponse{}, fmt.Errorf("vivo api response: %w", err)
	}
	return resp, nil
}

// signVivo computes the request signature: parameters sorted by key, joined
// as key=value pairs with '&', HMAC-SHA256 under the access secret, lower
// hex.
func signVivo(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == "sign" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
