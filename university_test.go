package unicatalog

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestUniversity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		expected University
	}{
		{
			name:     "id field",
			jsonData: `{"code": "IUH", "name": "Industrial University of HCMC", "id": "u1"}`,
			expected: University{Code: "IUH", Name: "Industrial University of HCMC", ID: "u1"},
		},
		{
			name:     "mongo _id alias",
			jsonData: `{"code": "HCMUT", "name": "Ho Chi Minh University of Technology", "_id": "65f0"}`,
			expected: University{Code: "HCMUT", Name: "Ho Chi Minh University of Technology", ID: "65f0"},
		},
		{
			name:     "algolia objectID alias",
			jsonData: `{"code": "UEH", "name": "University of Economics", "objectID": "2abc"}`,
			expected: University{Code: "UEH", Name: "University of Economics", ID: "2abc"},
		},
		{
			name:     "id wins over _id",
			jsonData: `{"code": "X", "name": "Y", "id": "a", "_id": "b"}`,
			expected: University{Code: "X", Name: "Y", ID: "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got University
			if err := json.Unmarshal([]byte(tt.jsonData), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestDetail_UnmarshalJSON(t *testing.T) {
	data := `{
		"code": "IUH",
		"name": "Industrial University of HCMC",
		"_id": "u1",
		"benchmarks": [
			{"majorCode": "7480201", "majorName": "Information Technology", "subjectGroup": "A00", "method": "THPT", "score": 24.5},
			{"majorCode": "7340101", "majorName": "Business Administration", "subjectGroup": "D01", "method": "DGNL", "score": 750, "note": "HCM VNU test"}
		]
	}`

	var d Detail
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if d.Code != "IUH" || d.ID != "u1" {
		t.Errorf("University fields not decoded: %+v", d.University)
	}
	if len(d.Benchmarks) != 2 {
		t.Fatalf("Expected 2 benchmarks, got %d", len(d.Benchmarks))
	}
	if d.Benchmarks[1].Note != "HCM VNU test" {
		t.Errorf("Expected note to be decoded, got %q", d.Benchmarks[1].Note)
	}
	if d.Benchmarks[1].Score != 750 {
		t.Errorf("Expected score 750, got %v", d.Benchmarks[1].Score)
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 0},
		{"network", errors.Mark(errors.New("dial tcp"), ErrNetwork), ErrCodeNetwork},
		{"malformed", errors.Mark(errors.New("bad json"), ErrMalformedResponse), ErrCodeMalformedResponse},
		{"not found wins over network", errors.Mark(errors.Mark(errors.New("404"), ErrNetwork), ErrNotFound), ErrCodeNotFound},
		{"wrapped sentinel", errors.Wrap(ErrCanceled, "fetch"), ErrCodeCanceled},
		{"backend unavailable", ErrBackendUnavailable, ErrCodeBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	if ErrCodeMalformedResponse.String() != "malformed response" {
		t.Errorf("unexpected string %q", ErrCodeMalformedResponse.String())
	}
	if ErrorCode(42).String() != "unknown error" {
		t.Errorf("unexpected string %q", ErrorCode(42).String())
	}
}
