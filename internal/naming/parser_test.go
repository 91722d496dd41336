package naming

import (
	"testing"
	"time"

	"github.com/forzadb/carcompare/internal/catalog"
)

const fixtureTables = `
manufacturers:
  - {code: ab, name: Abarth, logo: _images/brands/ab.png}
  - {code: por, name: Porsche, logo: _images/brands/por.png}
  - {code: fer, name: Ferrari}
logo_aliases:
  hoonigan: _images/brands/hoon.png
variants:
  Gt3 Rs: GT3 RS
  Fe: Forza Edition
variant_logos:
  Forza Edition: _images/variants/fe.png
overrides:
  fer_f40_competizione:
    {manufacturer: Ferrari, model: F40, year: "1989", variant: Competizione, race_number: ""}
  for_hoon_escort_77:
    {manufacturer: Hoonigan, model: Escort, year: "1977", variant: Gymkhana, race_number: "43"}
  ab_special:
    {manufacturer: Abarth, model: Special, year: "1960", variant: "", race_number: ""}
`

func newTestParser(t *testing.T, year int) *Parser {
	t.Helper()
	tables, err := catalog.Parse([]byte(fixtureTables))
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	clock := func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return NewParser(tables, WithClock(clock))
}

func unknownIdentity() Identity {
	return Identity{
		ManufacturerCode: "unknown",
		Manufacturer:     Unknown,
		Model:            Unknown,
		Year:             Unknown,
		Variant:          Unknown,
		RaceNumber:       Unknown,
	}
}

func TestParse(t *testing.T) {
	p := newTestParser(t, 2024)

	cases := []struct {
		name string
		raw  string
		want Identity
	}{
		{
			name: "plain", raw: "ab_gt3_2020",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "Gt3", Year: "2020"},
		},
		{
			name: "race number", raw: "ab_12_model_2020",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "Model", Year: "2020", RaceNumber: "12"},
		},
		{
			name: "variant mapped", raw: "por_carrera_gt3_rs_2019",
			want: Identity{ManufacturerCode: "por", Manufacturer: "Porsche", Model: "Carrera", Year: "2019", Variant: "GT3 RS"},
		},
		{
			name: "variant unmapped is title-cased", raw: "por_carrera_turbo_s_2021",
			want: Identity{ManufacturerCode: "por", Manufacturer: "Porsche", Model: "Carrera", Year: "2021", Variant: "Turbo S"},
		},
		{
			name: "numeric second segment is the race number", raw: "por_911_gt3_rs_2019",
			want: Identity{ManufacturerCode: "por", Manufacturer: "Porsche", Model: "Gt3", Year: "2019", Variant: "Rs", RaceNumber: "911"},
		},
		{
			name: "digits split title-cased words", raw: "por_911gt3rs_19",
			want: Identity{ManufacturerCode: "por", Manufacturer: "Porsche", Model: "911Gt3Rs", Year: "2019"},
		},
		{
			name: "race number with variant", raw: "por_3_917_fe_70",
			want: Identity{ManufacturerCode: "por", Manufacturer: "Porsche", Model: "917", Year: "1970", Variant: "Forza Edition", RaceNumber: "3"},
		},
		{
			name: "unknown manufacturer code", raw: "zz_thing_2001",
			want: Identity{ManufacturerCode: "zz", Manufacturer: Unknown, Model: "Thing", Year: "2001"},
		},
		{
			name: "mixed case input", raw: "AB_GT3_2020",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "Gt3", Year: "2020"},
		},
		{
			name: "non-numeric year kept", raw: "ab_model_xx",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "Model", Year: "xx"},
		},
		{
			name: "three-digit year kept", raw: "ab_model_199",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "Model", Year: "199"},
		},
		{
			name: "race number takes the model slot", raw: "ab_12_2020",
			want: Identity{ManufacturerCode: "ab", Manufacturer: "Abarth", Model: "2020", Year: "2020", RaceNumber: "12"},
		},
		{name: "two segments", raw: "ab_model", want: unknownIdentity()},
		{name: "one segment", raw: "abmodel", want: unknownIdentity()},
		{name: "empty", raw: "", want: unknownIdentity()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Parse(tc.raw); got != tc.want {
				t.Errorf("Parse(%q) =\n  %+v\nwant\n  %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParse_QualitySuffix(t *testing.T) {
	p := newTestParser(t, 2024)
	want := p.Parse("ab_model_99")
	for _, raw := range []string{"ab_model_99_slod", "ab_model_99_SLOD", "ab_model_99slod", "AB_Model_99_Slod"} {
		if got := p.Parse(raw); got != want {
			t.Errorf("Parse(%q) = %+v, want %+v", raw, got, want)
		}
	}
	if want.Year != "1999" {
		t.Errorf("Year = %q, want 1999", want.Year)
	}
}

func TestParse_YearPivot(t *testing.T) {
	cases := []struct {
		clockYear int
		raw       string
		want      string
	}{
		{2024, "ab_model_25", "1925"},
		{2024, "ab_model_24", "2024"},
		{2024, "ab_model_20", "2020"},
		{2024, "ab_model_00", "2000"},
		{2024, "ab_model_99", "1999"},
		{2030, "ab_model_25", "2025"},
	}
	for _, tc := range cases {
		p := newTestParser(t, tc.clockYear)
		if got := p.Parse(tc.raw).Year; got != tc.want {
			t.Errorf("clock %d: Parse(%q).Year = %q, want %q", tc.clockYear, tc.raw, got, tc.want)
		}
	}
}

func TestParse_Overrides(t *testing.T) {
	p := newTestParser(t, 2024)

	t.Run("bypasses positional parsing", func(t *testing.T) {
		got := p.Parse("fer_f40_competizione")
		want := Identity{ManufacturerCode: "fer", Manufacturer: "Ferrari", Model: "F40", Year: "1989", Variant: "Competizione"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("suffix and case are normalized before lookup", func(t *testing.T) {
		if got := p.Parse("FER_F40_Competizione_slod"); got.Model != "F40" {
			t.Errorf("override not applied: %+v", got)
		}
	})

	t.Run("manufacturer in logo table replaces code", func(t *testing.T) {
		got := p.Parse("for_hoon_escort_77")
		if got.ManufacturerCode != "hoonigan" || got.RaceNumber != "43" {
			t.Errorf("got %+v", got)
		}
		if logo := p.Present(got).ManufacturerLogo; logo != "_images/brands/hoon.png" {
			t.Errorf("logo = %q", logo)
		}
	})

	t.Run("applies below the segment floor", func(t *testing.T) {
		got := p.Parse("ab_special")
		want := Identity{ManufacturerCode: "unknown", Manufacturer: "Abarth", Model: "Special", Year: "1960"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser(t, 2024)
	for _, raw := range []string{"ab_gt3_2020", "por_3_917_fe_70", "weird", "fer_f40_competizione"} {
		if a, b := p.Parse(raw), p.Parse(raw); a != b {
			t.Errorf("Parse(%q) not deterministic: %+v vs %+v", raw, a, b)
		}
	}
}

func TestPresent(t *testing.T) {
	p := newTestParser(t, 2024)

	cases := []struct {
		raw         string
		wantLogo    string
		wantVariant string
	}{
		{"ab_gt3_2020", "_images/brands/ab.png", ""},
		{"por_3_917_fe_70", "_images/brands/por.png", "_images/variants/fe.png"},
		{"fer_dino_gtb_1977", unknownLogo, "Gtb"},
		{"fer_308_gtb_1977", unknownLogo, ""},
		{"nope", unknownLogo, Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			pr := p.Present(p.Parse(tc.raw))
			if pr.ManufacturerLogo != tc.wantLogo {
				t.Errorf("ManufacturerLogo = %q, want %q", pr.ManufacturerLogo, tc.wantLogo)
			}
			if pr.VariantDisplay != tc.wantVariant {
				t.Errorf("VariantDisplay = %q, want %q", pr.VariantDisplay, tc.wantVariant)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"gt3rs":    "Gt3Rs",
		"911gt3rs": "911Gt3Rs",
		"a4b":      "A4B",
		"o'neil":   "O'Neil",
		"TURBO S":  "Turbo S",
		"gt3 rs":   "Gt3 Rs",
		"":         "",
		"123":      "123",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"AB_GT3_2020_SLOD": "ab_gt3_2020",
		"ab_gt3_2020slod":  "ab_gt3_2020",
		"ab_slod_2020":     "ab_slod_2020",
		"slod":             "",
		"ab_gt3_2020":      "ab_gt3_2020",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
