package refcurve

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
)

func birth() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func newTestLoader(files map[string]string) *Loader {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return NewLoader(fsys, zerolog.Nop())
}

func TestLoad_PercentileColumnsInRankOrder(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "age,p3,p50,p97\n0,2.5,3.3,4.3\n1,3.4,4.5,5.7\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	if len(series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(series))
	}
	want := []string{"p3", "p50", "p97"}
	for i, s := range series {
		if s.Label != want[i] {
			t.Errorf("series %d: expected label %s, got %s", i, want[i], s.Label)
		}
	}
}

func TestLoad_SDHeaderSynonyms(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "Age (months);SD-2;SD-1;M;SD1;SD2\n0;2.5;2.9;3.3;3.9;4.3\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	want := []string{"-2SD", "-1SD", "p50", "+1SD", "+2SD"}
	if len(series) != len(want) {
		t.Fatalf("expected %d series, got %d", len(want), len(series))
	}
	for i, s := range series {
		if s.Label != want[i] {
			t.Errorf("series %d: expected label %s, got %s", i, want[i], s.Label)
		}
	}
}

func TestLoad_SemicolonDelimiterAndCommaDecimals(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "months;M\n0;3,3\n1;4,5\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	if series[0].Points[0].Value != 3.3 {
		t.Errorf("expected comma decimal parsed as 3.3, got %v", series[0].Points[0].Value)
	}
}

func TestLoad_FallbackColumnOneAsMedian(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "age,value\n0,3.3\n1,4.5\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	if len(series) != 1 {
		t.Fatalf("expected fallback series, got %d", len(series))
	}
	if series[0].Label != "p50" {
		t.Errorf("expected fallback label p50, got %s", series[0].Label)
	}
}

func TestLoad_MonthArithmetic(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "age,p50\n0,3.3\n1,4.5\n1.5,5.0\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	pts := series[0].Points
	if !pts[0].Instant.Equal(birth()) {
		t.Errorf("age 0 must anchor at birth date, got %v", pts[0].Instant)
	}
	if !pts[1].Instant.Equal(birth().AddDate(0, 1, 0)) {
		t.Errorf("age 1 must use calendar month arithmetic, got %v", pts[1].Instant)
	}
	// 1.5 months = +1 calendar month + round(0.5 * 30.437) = 15 days
	want := birth().AddDate(0, 1, 0).AddDate(0, 0, 15)
	if !pts[2].Instant.Equal(want) {
		t.Errorf("age 1.5: expected %v, got %v", want, pts[2].Instant)
	}
}

func TestLoad_PointsSortedByInstant(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "age,p50\n2,5.6\n0,3.3\n1,4.5\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	pts := series[0].Points
	for i := 1; i < len(pts); i++ {
		if pts[i].Instant.Before(pts[i-1].Instant) {
			t.Errorf("points not sorted at index %d", i)
		}
	}
}

func TestLoad_SexSuffixCasingAndSubLocations(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"reference/wfa_0_24m_f.csv": "age,p50\n0,3.2\n",
	})
	series := loader.Load(MetricWeight, SexFemale, birth())
	if len(series) != 1 {
		t.Fatalf("expected resource resolved via lowercase suffix in sub-location, got %d series", len(series))
	}
}

func TestLoad_MissingResourceReturnsEmpty(t *testing.T) {
	loader := newTestLoader(nil)
	series := loader.Load(MetricWeight, SexMale, birth())
	if series == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(series) != 0 {
		t.Errorf("expected empty set, got %d series", len(series))
	}
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"wfa_0_24m_M.csv": "age,p50\nx,3.3\n1,notanumber\n2,5.6\n",
	})
	series := loader.Load(MetricWeight, SexMale, birth())
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	if len(series[0].Points) != 1 {
		t.Errorf("expected only the valid row kept, got %d points", len(series[0].Points))
	}
}

func TestClassifyHeader(t *testing.T) {
	cases := map[string]string{
		"M":      "p50",
		"median": "p50",
		"P0.50":  "p50",
		"p3":     "p3",
		"P15 ":   "p15",
		"p85":    "p85",
		"p97":    "p97",
		"SD-2":   "-2SD",
		"-2sd":   "-2SD",
		"z-2":    "-2SD",
		"SD0":    "0SD",
		"z1":     "+1SD",
		"sd2":    "+2SD",
	}
	for in, want := range cases {
		got, ok := classifyHeader(in)
		if !ok || got != want {
			t.Errorf("classifyHeader(%q) = %q,%v; want %q", in, got, ok, want)
		}
	}
	if _, ok := classifyHeader("remarks"); ok {
		t.Error("expected unrelated header to be unclassified")
	}
	if _, ok := classifyHeader("sd5"); ok {
		t.Error("expected out-of-range SD header to be unclassified")
	}
}
