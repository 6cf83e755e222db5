package algolia

import (
	"context"
	"errors"
	"testing"

	"github.com/letmevibethatforyou/unicatalog"
)

func TestStaticSecrets(t *testing.T) {
	secrets, err := StaticSecrets("test-app-id", "test-api-key")()
	if err != nil {
		t.Errorf("StaticSecrets should not return error, got: %v", err)
	}

	if secrets.AppID != "test-app-id" {
		t.Errorf("Expected AppID test-app-id, got %s", secrets.AppID)
	}
	if secrets.APIKey != "test-api-key" {
		t.Errorf("Expected APIKey test-api-key, got %s", secrets.APIKey)
	}
}

func TestEnvSecrets(t *testing.T) {
	tests := []struct {
		name        string
		appID       string
		apiKey      string
		expectError bool
	}{
		{"valid secrets", "test-app-id", "test-api-key", false},
		{"missing app id", "", "test-api-key", true},
		{"missing api key", "test-app-id", "", true},
		{"both missing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ALGOLIA_APP_ID", tt.appID)
			t.Setenv("ALGOLIA_API_KEY", tt.apiKey)

			secrets, err := EnvSecrets()()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if secrets.AppID != tt.appID || secrets.APIKey != tt.apiKey {
				t.Errorf("Unexpected secrets %+v", secrets)
			}
		})
	}
}

func TestNewClient_LazyInit(t *testing.T) {
	tests := []struct {
		name            string
		fetchSecrets    FetchSecrets
		expectInitError bool
	}{
		{"valid secrets", StaticSecrets("test-app", "test-key"), false},
		{"fetch error", func() (Secrets, error) { return Secrets{}, errors.New("fetch failed") }, true},
		{"empty app id", StaticSecrets("", "test-key"), true},
		{"empty api key", StaticSecrets("test-app", ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			fetch := func() (Secrets, error) {
				calls++
				return tt.fetchSecrets()
			}

			client := NewClient(fetch)
			if calls != 0 {
				t.Error("Secrets must not be fetched before first use")
			}

			_, err1 := client.getClient()
			_, err2 := client.getClient()

			if calls != 1 {
				t.Errorf("Expected secrets to be fetched once, got %d", calls)
			}
			if (err1 != nil) != tt.expectInitError {
				t.Errorf("Expected init error=%v, got %v", tt.expectInitError, err1)
			}
			if (err1 == nil) != (err2 == nil) {
				t.Error("Expected the init result to be memoized")
			}
		})
	}
}

func TestClient_WritesFailWithoutCredentials(t *testing.T) {
	client := NewClient(StaticSecrets("", ""))
	ctx := context.Background()
	detail := &unicatalog.Detail{University: unicatalog.University{Code: "IUH"}}

	if err := client.SaveUniversity(ctx, "universities", detail); err == nil {
		t.Error("Expected SaveUniversity to fail")
	}
	if err := client.DeleteUniversity(ctx, "universities", "IUH"); err == nil {
		t.Error("Expected DeleteUniversity to fail")
	}
	if err := client.BatchSaveUniversities(ctx, "universities", []*unicatalog.Detail{detail}); err == nil {
		t.Error("Expected BatchSaveUniversities to fail")
	}
	if err := client.BatchSaveUniversities(ctx, "universities", nil); err != nil {
		t.Errorf("Expected empty batch to be a no-op, got %v", err)
	}
}

func TestToObject(t *testing.T) {
	detail := &unicatalog.Detail{
		University: unicatalog.University{Code: "HCMUT", Name: "Ho Chi Minh University of Technology", ID: "2abc"},
		Benchmarks: []unicatalog.Benchmark{{MajorCode: "7480201", Method: "THPT", Score: 27.5}},
	}

	obj := toObject(detail)

	if obj["objectID"] != "HCMUT" {
		t.Errorf("Expected objectID to be the code, got %v", obj["objectID"])
	}
	if obj["id"] != "2abc" || obj["name"] != detail.Name {
		t.Errorf("Unexpected object %v", obj)
	}
	if bs, ok := obj["benchmarks"].([]unicatalog.Benchmark); !ok || len(bs) != 1 {
		t.Errorf("Expected benchmarks to be carried, got %v", obj["benchmarks"])
	}

	empty := toObject(&unicatalog.Detail{University: unicatalog.University{Code: "X"}})
	if bs, ok := empty["benchmarks"].([]unicatalog.Benchmark); !ok || bs == nil {
		t.Errorf("Expected empty benchmark list, got %#v", empty["benchmarks"])
	}
}
