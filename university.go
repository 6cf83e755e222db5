package unicatalog

import "encoding/json"

// University is one entry of the catalogue.
type University struct {
	// Code is the short admission code, e.g. "IUH".
	Code string `json:"code" dynamodbav:"code"`
	// Name is the full display name.
	Name string `json:"name" dynamodbav:"name"`
	// ID is the backend identifier.
	ID string `json:"id" dynamodbav:"id"`
}

// UnmarshalJSON accepts "_id" as an alias of "id".
func (u *University) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		ObjectID string `json:"objectID"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.Code = raw.Code
	u.Name = raw.Name
	u.ID = raw.ID
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	if u.ID == "" {
		u.ID = raw.ObjectID
	}
	return nil
}

// Benchmark is an admission cut-off score for one major under one
// admission method.
type Benchmark struct {
	MajorCode    string  `json:"majorCode" dynamodbav:"majorCode"`
	MajorName    string  `json:"majorName" dynamodbav:"majorName"`
	SubjectGroup string  `json:"subjectGroup" dynamodbav:"subjectGroup"`
	Method       string  `json:"method" dynamodbav:"method"`
	Score        float64 `json:"score" dynamodbav:"score"`
	Note         string  `json:"note,omitempty" dynamodbav:"note,omitempty"`
}

// Detail is the payload of a single university view.
type Detail struct {
	University
	Benchmarks []Benchmark `json:"benchmarks" dynamodbav:"benchmarks"`
}

// UnmarshalJSON decodes the flattened university fields alongside the
// benchmark list. It is required because University has its own
// UnmarshalJSON, which would otherwise be promoted and swallow the
// benchmarks.
func (d *Detail) UnmarshalJSON(data []byte) error {
	var u University
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}

	var rest struct {
		Benchmarks []Benchmark `json:"benchmarks"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}

	d.University = u
	d.Benchmarks = rest.Benchmarks
	return nil
}
