package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestRecommend(t *testing.T) {
	var got Student
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		w.Write([]byte(`{"universities": ["IUH", "HCMUT"], "confidence": 0.82}`))
	})

	rec, err := c.Recommend(context.Background(), Student{
		Scores:       map[string]float64{"math": 9, "physics": 8.5, "chemistry": 8},
		SubjectGroup: "A00",
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if got.SubjectGroup != "A00" || got.Scores["physics"] != 8.5 {
		t.Errorf("Student not forwarded: %+v", got)
	}
	if rec["confidence"] != 0.82 {
		t.Errorf("Expected confidence 0.82, got %v", rec["confidence"])
	}
}

func TestRecommend_Validation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected")
	})

	if _, err := c.Recommend(context.Background(), Student{}); err == nil {
		t.Error("Expected error for student without scores")
	}
}

func TestRecommend_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	_, err := c.Recommend(context.Background(), Student{Scores: map[string]float64{"math": 7}})
	if !errors.Is(err, unicatalog.ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerateData(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-data" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"count": 500, "file_path": "data/synthetic_500.csv"}`))
	})

	res, err := c.GenerateData(context.Background(), 500, "gaussian")
	if err != nil {
		t.Fatalf("GenerateData failed: %v", err)
	}

	if got["num_samples"] != float64(500) || got["method"] != "gaussian" {
		t.Errorf("Unexpected request body: %v", got)
	}
	if res.Count != 500 || res.FilePath != "data/synthetic_500.csv" {
		t.Errorf("Unexpected result: %+v", res)
	}
}

func TestGenerateData_Validation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected")
	})

	tests := []struct {
		name       string
		numSamples int
		method     string
	}{
		{"zero samples", 0, "gaussian"},
		{"negative samples", -3, "gaussian"},
		{"blank method", 10, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.GenerateData(context.Background(), tt.numSamples, tt.method); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestGenerateData_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusInternalServerError)
	})

	_, err := c.GenerateData(context.Background(), 10, "gaussian")
	if !errors.Is(err, unicatalog.ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}
