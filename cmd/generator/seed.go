package main

import (
	"math/rand/v2"

	"github.com/letmevibethatforyou/unicatalog"
)

type major struct {
	code   string
	name   string
	groups []string
}

var (
	universities = []unicatalog.University{
		{Code: "IUH", Name: "Industrial University of Ho Chi Minh City"},
		{Code: "HCMUT", Name: "Ho Chi Minh City University of Technology"},
		{Code: "UEH", Name: "University of Economics Ho Chi Minh City"},
		{Code: "HCMUS", Name: "University of Science, VNU-HCM"},
		{Code: "UIT", Name: "University of Information Technology, VNU-HCM"},
		{Code: "HUST", Name: "Hanoi University of Science and Technology"},
		{Code: "NEU", Name: "National Economics University"},
		{Code: "FTU", Name: "Foreign Trade University"},
	}

	majors = []major{
		{code: "7480201", name: "Information Technology", groups: []string{"A00", "A01", "D01"}},
		{code: "7480101", name: "Computer Science", groups: []string{"A00", "A01"}},
		{code: "7340101", name: "Business Administration", groups: []string{"A00", "A01", "D01", "D07"}},
		{code: "7340201", name: "Finance and Banking", groups: []string{"A00", "D01"}},
		{code: "7520201", name: "Electrical Engineering", groups: []string{"A00", "A01"}},
		{code: "7220201", name: "English Language", groups: []string{"D01", "D14"}},
	}

	// methods with the score range each one is graded on.
	methods = []struct {
		name     string
		min, max float64
		note     string
	}{
		{name: "THPT", min: 18, max: 29},
		{name: "DGNL", min: 600, max: 1000, note: "VNU-HCM competency assessment"},
		{name: "Hoc ba", min: 20, max: 29.5, note: "High school transcript"},
	}
)

// generateDetail builds a university with a random set of benchmarks.
func generateDetail(u unicatalog.University, r *rand.Rand) unicatalog.Detail {
	var benchmarks []unicatalog.Benchmark
	for _, m := range methods {
		for _, mj := range majors {
			if r.IntN(3) == 0 {
				continue
			}
			score := m.min + r.Float64()*(m.max-m.min)
			if m.max > 100 {
				score = float64(int(score))
			} else {
				score = float64(int(score*4)) / 4
			}
			benchmarks = append(benchmarks, unicatalog.Benchmark{
				MajorCode:    mj.code,
				MajorName:    mj.name,
				SubjectGroup: mj.groups[r.IntN(len(mj.groups))],
				Method:       m.name,
				Score:        score,
				Note:         m.note,
			})
		}
	}
	if benchmarks == nil {
		benchmarks = []unicatalog.Benchmark{}
	}

	return unicatalog.Detail{
		University: u,
		Benchmarks: benchmarks,
	}
}
