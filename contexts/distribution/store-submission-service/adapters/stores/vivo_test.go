package stores

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
)

func vivoStoreApp() entities.StoreApp {
	return entities.StoreApp{
		StoreAppID:   "store_1",
		AppID:        "app_1",
		Type:         entities.StoreVivo,
		AccessKey:    "ak",
		AccessSecret: "sk",
		PackageName:  "com.example.demo",
	}
}

func newVivoServer(t *testing.T, handler func(form map[string]string) string) (*httptest.Server, *VivoAdapter) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form := make(map[string]string)
		for key := range r.PostForm {
			form[key] = r.PostForm.Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handler(form)))
	}))
	t.Cleanup(server.Close)
	adapter := NewVivoAdapter(server.Client())
	adapter.Endpoint = server.URL
	return server, adapter
}

func TestVivoSubmitSignsRequest(t *testing.T) {
	var seen map[string]string
	_, adapter := newVivoServer(t, func(form map[string]string) string {
		seen = form
		return `{"code":0,"data":{"taskId":"task_7"}}`
	})

	taskID, err := adapter.Submit(context.Background(), vivoStoreApp(), ports.ReleaseInfo{
		Version:     "1.2.3",
		StoragePath: "users/owner/apps/demo/packages/7/demo.apk",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if taskID != "task_7" {
		t.Fatalf("task id: got %q", taskID)
	}
	if seen["method"] != "app.update.app" || seen["sign_method"] != "HMAC-SHA256" {
		t.Fatalf("request framing wrong: %+v", seen)
	}
	if seen["packageName"] != "com.example.demo" || seen["versionName"] != "1.2.3" {
		t.Fatalf("business params missing: %+v", seen)
	}

	// Recompute the signature over the received parameters.
	keys := make([]string, 0, len(seen))
	for key := range seen {
		if key != "sign" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+seen[key])
	}
	mac := hmac.New(sha256.New, []byte("sk"))
	mac.Write([]byte(strings.Join(pairs, "&")))
	if want := hex.EncodeToString(mac.Sum(nil)); seen["sign"] != want {
		t.Fatalf("signature mismatch: got %q, want %q", seen["sign"], want)
	}
}

func TestVivoSubmitResultStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   ports.ReviewStatus
	}{
		{"passed", 3, ports.ReviewPassed},
		{"rejected", 4, ports.ReviewRejected},
		{"in review", 2, ports.ReviewPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, adapter := newVivoServer(t, func(form map[string]string) string {
				if form["method"] != "app.query.task.status" || form["taskId"] != "task_7" {
					t.Errorf("query framing wrong: %+v", form)
				}
				switch tc.status {
				case 3:
					return `{"code":0,"data":{"status":3}}`
				case 4:
					return `{"code":0,"data":{"status":4,"message":"rejected"}}`
				default:
					return `{"code":0,"data":{"status":2}}`
				}
			})
			status, _, err := adapter.SubmitResult(context.Background(), vivoStoreApp(), "task_7")
			if err != nil {
				t.Fatalf("submit result: %v", err)
			}
			if status != tc.want {
				t.Fatalf("status %d mapped to %v, want %v", tc.status, status, tc.want)
			}
		})
	}
}

func TestVivoServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	adapter := NewVivoAdapter(server.Client())
	adapter.Endpoint = server.URL

	_, err := adapter.Submit(context.Background(), vivoStoreApp(), ports.ReleaseInfo{Version: "1.0.0"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domainerrors.IsTransient(err) {
		t.Fatalf("5xx should be transient, got %v", err)
	}
}

func TestVivoBusinessErrorIsPermanent(t *testing.T) {
	_, adapter := newVivoServer(t, func(form map[string]string) string {
		return `{"code":1001,"msg":"invalid package"}`
	})

	_, err := adapter.Submit(context.Background(), vivoStoreApp(), ports.ReleaseInfo{Version: "1.0.0"})
	if err == nil {
		t.Fatal("expected error")
	}
	if domainerrors.IsTransient(err) {
		t.Fatalf("business rejection must be permanent, got %v", err)
	}
}

func TestRawLinkAdapterHasNoPipeline(t *testing.T) {
	raw := RawLinkAdapter{}
	storeApp := entities.StoreApp{Type: entities.StoreRawLink, Link: "https://example.com", CurrentVersion: "2.0.0"}

	if _, err := raw.Submit(context.Background(), storeApp, ports.ReleaseInfo{}); err != domainerrors.ErrStoreUnsupported {
		t.Fatalf("expected ErrStoreUnsupported, got %v", err)
	}
	version, err := raw.CurrentVersion(context.Background(), storeApp)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != "2.0.0" {
		t.Fatalf("raw link serves the recorded version, got %q", version)
	}
}
