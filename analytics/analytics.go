package analytics

import (
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/pointer"
	"github.com/medisys-health/diagnostics/reports"
)

const (
	DateLayout    = "2006-01-02"
	MaxTestTypes  = 8
	OtherTestType = "Other"
)

var Palette = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff7300", "#00ff00", "#ff0000", "#00ffff", "#ff00ff"}

var abnormalStatuses = mapset.NewSet[string]("high", "low", "abnormal")

type Analytics struct {
	Summary         Summary         `json:"summary"`
	TrendsData      []TrendPoint    `json:"trendsData"`
	TestTypesData   []TestTypeShare `json:"testTypesData"`
	ClinicData      []ClinicStats   `json:"clinicData"`
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
	Metadata        *Metadata       `json:"metadata,omitempty"`
}

type Summary struct {
	TotalReports    int `json:"totalReports"`
	TotalPatients   int `json:"totalPatients"`
	CriticalResults int `json:"criticalResults"`
	ClinicsActive   int `json:"clinicsActive"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Reports  int    `json:"reports"`
	Critical int    `json:"critical"`
}

type TestTypeShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type ClinicStats struct {
	Clinic   string `json:"clinic"`
	Reports  int    `json:"reports"`
	Critical int    `json:"critical"`
}

type StatusBreakdown struct {
	Normal   int `json:"normal"`
	Abnormal int `json:"abnormal"`
	Critical int `json:"critical"`
}

type Metadata struct {
	UserRole            auth.Role `json:"user_role"`
	UserClinic          *string   `json:"user_clinic"`
	TimeRangeDays       int       `json:"time_range_days"`
	TotalReportsInRange int       `json:"total_reports_in_range"`
	GeneratedAt         time.Time `json:"generated_at"`
}

func NewMetadata(access auth.AccessContext, timeRangeDays int, total int, now time.Time) *Metadata {
	metadata := &Metadata{
		UserRole:            access.Role,
		TimeRangeDays:       timeRangeDays,
		TotalReportsInRange: total,
		GeneratedAt:         now.UTC(),
	}
	if access.IsLab() {
		metadata.UserClinic = pointer.FromAny(access.ClinicId)
	}
	return metadata
}

// Aggregate folds the reports into dashboard statistics. Trends cover the
// timeRangeDays calendar days ending on the UTC date of now.
func Aggregate(list []reports.Report, timeRangeDays int, now time.Time) Analytics {
	result := Analytics{
		TrendsData:    make([]TrendPoint, 0),
		TestTypesData: make([]TestTypeShare, 0),
		ClinicData:    make([]ClinicStats, 0),
	}
	if len(list) == 0 {
		return result
	}

	patients := mapset.NewThreadUnsafeSet[string]()
	dailyReports := map[string]int{}
	dailyCritical := map[string]int{}
	clinics := map[string]*ClinicStats{}
	types := newTypeCounter()
	fold := cases.Fold()

	for _, report := range list {
		patients.Add(report.PatientId)

		clinic, ok := clinics[report.ClinicId]
		if !ok {
			clinic = &ClinicStats{Clinic: report.ClinicId}
			clinics[report.ClinicId] = clinic
		}
		clinic.Reports++

		date := report.Timestamp.UTC().Format(DateLayout)
		dailyReports[date]++

		critical := false
		for _, test := range report.TestResults {
			types.add(test.TestType)

			switch {
			case test.IsCritical():
				result.StatusBreakdown.Critical++
				if !critical {
					critical = true
					result.Summary.CriticalResults++
					clinic.Critical++
					dailyCritical[date]++
				}
			case abnormalStatuses.Contains(fold.String(strings.TrimSpace(test.Status))):
				result.StatusBreakdown.Abnormal++
			default:
				result.StatusBreakdown.Normal++
			}
		}
	}

	result.Summary.TotalReports = len(list)
	result.Summary.TotalPatients = patients.Cardinality()
	result.Summary.ClinicsActive = len(clinics)

	end := now.UTC()
	for i := timeRangeDays - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format(DateLayout)
		result.TrendsData = append(result.TrendsData, TrendPoint{
			Date:     date,
			Reports:  dailyReports[date],
			Critical: dailyCritical[date],
		})
	}

	for i, entry := range types.top(MaxTestTypes) {
		result.TestTypesData = append(result.TestTypesData, TestTypeShare{
			Name:  entry.name,
			Value: entry.count,
			Color: Palette[i%len(Palette)],
		})
	}

	for _, clinic := range clinics {
		result.ClinicData = append(result.ClinicData, *clinic)
	}
	sort.Slice(result.ClinicData, func(i, j int) bool {
		return result.ClinicData[i].Clinic < result.ClinicData[j].Clinic
	})

	return result
}

type typeCount struct {
	name  string
	count int
}

// typeCounter keeps first appearance order so that ties rank deterministically
type typeCounter struct {
	index  map[string]int
	counts []typeCount
}

func newTypeCounter() *typeCounter {
	return &typeCounter{index: map[string]int{}}
}

func (t *typeCounter) add(name string) {
	if name = strings.TrimSpace(name); name == "" {
		name = OtherTestType
	}
	if i, ok := t.index[name]; ok {
		t.counts[i].count++
		return
	}
	t.index[name] = len(t.counts)
	t.counts = append(t.counts, typeCount{name: name, count: 1})
}

func (t *typeCounter) top(n int) []typeCount {
	sorted := make([]typeCount, len(t.counts))
	copy(sorted, t.counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
