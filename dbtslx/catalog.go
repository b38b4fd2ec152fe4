package dbtslx

import (
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

type MetricType string

const (
	MetricTypeSimple     MetricType = "SIMPLE"
	MetricTypeRatio      MetricType = "RATIO"
	MetricTypeCumulative MetricType = "CUMULATIVE"
	MetricTypeDerived    MetricType = "DERIVED"
	MetricTypeConversion MetricType = "CONVERSION"
)

type DimensionType string

const (
	DimensionTypeCategorical DimensionType = "CATEGORICAL"
	DimensionTypeTime        DimensionType = "TIME"
)

type TimeGranularity string

const (
	TimeGranularityUnset   TimeGranularity = ""
	TimeGranularityDay     TimeGranularity = "DAY"
	TimeGranularityWeek    TimeGranularity = "WEEK"
	TimeGranularityMonth   TimeGranularity = "MONTH"
	TimeGranularityQuarter TimeGranularity = "QUARTER"
	TimeGranularityYear    TimeGranularity = "YEAR"
)

// ParseTimeGranularity accepts any casing of the grain names used by the
// gateway and tool callers.
func ParseTimeGranularity(s string) (TimeGranularity, bool) {
	switch TimeGranularity(strings.ToUpper(s)) {
	case TimeGranularityDay:
		return TimeGranularityDay, true
	case TimeGranularityWeek:
		return TimeGranularityWeek, true
	case TimeGranularityMonth:
		return TimeGranularityMonth, true
	case TimeGranularityQuarter:
		return TimeGranularityQuarter, true
	case TimeGranularityYear:
		return TimeGranularityYear, true
	}
	return TimeGranularityUnset, false
}

type MetricDescriptor struct {
	Name        string
	Type        MetricType
	Label       string
	Description string
}

type DimensionDescriptor struct {
	Name                   string
	Type                   DimensionType
	Label                  string
	Description            string
	QueryableGranularities []TimeGranularity
}

func (d DimensionDescriptor) SupportsGrain(grain TimeGranularity) bool {
	return slices.Contains(d.QueryableGranularities, grain)
}

type EntityDescriptor struct {
	Name        string
	Type        string
	Description string
}

type SavedQueryDescriptor struct {
	Name        string
	Label       string
	Description string
	MetricNames []string
	GroupByNames []string
}

// CatalogSnapshot is an immutable view of the metrics, dimensions and
// entities the compiler validates against. Dimensions and entities are
// scoped to the metric set the snapshot was built for.
type CatalogSnapshot struct {
	metrics    map[string]MetricDescriptor
	dimensions map[string]DimensionDescriptor
	entities   map[string]EntityDescriptor
}

func NewCatalogSnapshot(
	metrics []MetricDescriptor,
	dimensions []DimensionDescriptor,
	entities []EntityDescriptor,
) *CatalogSnapshot {
	snap := &CatalogSnapshot{
		metrics:    make(map[string]MetricDescriptor, len(metrics)),
		dimensions: make(map[string]DimensionDescriptor, len(dimensions)),
		entities:   make(map[string]EntityDescriptor, len(entities)),
	}
	for _, m := range metrics {
		snap.metrics[m.Name] = m
	}
	for _, d := range dimensions {
		snap.dimensions[d.Name] = d
	}
	for _, e := range entities {
		snap.entities[e.Name] = e
	}
	return snap
}

func (s *CatalogSnapshot) LookupMetric(name string) (MetricDescriptor, bool) {
	m, ok := s.metrics[name]
	return m, ok
}

func (s *CatalogSnapshot) LookupDimension(name string) (DimensionDescriptor, bool) {
	d, ok := s.dimensions[name]
	return d, ok
}

func (s *CatalogSnapshot) LookupEntity(name string) (EntityDescriptor, bool) {
	e, ok := s.entities[name]
	return e, ok
}

func (s *CatalogSnapshot) MetricNames() []string {
	return sortedKeys(s.metrics)
}

func (s *CatalogSnapshot) DimensionNames() []string {
	return sortedKeys(s.dimensions)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
