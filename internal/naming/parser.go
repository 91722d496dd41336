package naming

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/forzadb/carcompare/internal/catalog"
)

// Unknown marks an identity field the parser could not resolve.
const Unknown = "Unknown"

const (
	unknownCode = "unknown"
	unknownLogo = "_images/brands/Unknown_Logo.png"
)

var reQualitySuffix = regexp.MustCompile(`(?i)_?slod$`)

// Identity is the parsed (manufacturer, model, year, variant, race number)
// tuple. It is comparable and used as the grouping key across games.
type Identity struct {
	ManufacturerCode string
	Manufacturer     string
	Model            string
	Year             string
	Variant          string
	RaceNumber       string
}

// Presentation carries the display lookups derived from an Identity.
type Presentation struct {
	ManufacturerLogo string
	// VariantDisplay is a logo path when one is configured, otherwise the
	// plain variant text.
	VariantDisplay string
}

// Tables is the lookup data the parser resolves against.
type Tables interface {
	ManufacturerName(code string) (string, bool)
	ManufacturerLogo(key string) (string, bool)
	VariantName(raw string) (string, bool)
	VariantLogo(variant string) (string, bool)
	Override(name string) (catalog.Override, bool)
}

// Parser resolves directory names against a fixed set of tables.
type Parser struct {
	tables Tables
	now    func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used for the two-digit year pivot.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// NewParser returns a parser over tables.
func NewParser(tables Tables, opts ...Option) *Parser {
	p := &Parser{
		tables: tables,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StripQualitySuffix removes a trailing "_slod" or "slod", any case.
func StripQualitySuffix(name string) string {
	return reQualitySuffix.ReplaceAllString(name, "")
}

// Normalize strips the quality suffix and lowercases.
func Normalize(name string) string {
	return strings.ToLower(StripQualitySuffix(name))
}

// Parse maps a raw directory name to its Identity.
func (p *Parser) Parse(raw string) Identity {
	name := Normalize(raw)
	parts := strings.Split(name, "_")

	id := Identity{
		ManufacturerCode: unknownCode,
		Manufacturer:     Unknown,
		Model:            Unknown,
		Year:             Unknown,
		Variant:          Unknown,
		RaceNumber:       Unknown,
	}
	if len(parts) >= 3 {
		id.ManufacturerCode = parts[0]
	}

	if o, ok := p.tables.Override(name); ok {
		id.Manufacturer = o.Manufacturer
		id.Model = o.Model
		id.Year = o.Year
		id.Variant = o.Variant
		id.RaceNumber = o.RaceNumber
		if key := strings.ToLower(o.Manufacturer); key != "" {
			if _, ok := p.tables.ManufacturerLogo(key); ok {
				id.ManufacturerCode = key
			}
		}
		return id
	}

	if len(parts) < 3 {
		return id
	}

	if m, ok := p.tables.ManufacturerName(id.ManufacturerCode); ok {
		id.Manufacturer = m
	}

	modelIdx := 1
	id.RaceNumber = ""
	if isDigits(parts[1]) {
		id.RaceNumber = parts[1]
		modelIdx = 2
	}
	id.Model = titleCase(parts[modelIdx])
	id.Year = expandYear(parts[len(parts)-1], p.now())

	id.Variant = ""
	if modelIdx+1 < len(parts)-1 {
		raw := titleCase(strings.Join(parts[modelIdx+1:len(parts)-1], " "))
		id.Variant = raw
		if v, ok := p.tables.VariantName(raw); ok {
			id.Variant = v
		}
	}
	return id
}

// Present resolves the manufacturer logo and the variant display for id.
func (p *Parser) Present(id Identity) Presentation {
	pr := Presentation{
		ManufacturerLogo: unknownLogo,
		VariantDisplay:   id.Variant,
	}
	if logo, ok := p.tables.ManufacturerLogo(id.ManufacturerCode); ok {
		pr.ManufacturerLogo = logo
	}
	if logo, ok := p.tables.VariantLogo(id.Variant); ok {
		pr.VariantDisplay = logo
	}
	return pr
}

// expandYear widens a two-digit year: above the current year's last two
// digits is 19xx, otherwise 20xx. Anything else is returned unchanged.
func expandYear(seg string, now time.Time) string {
	if len(seg) != 2 || !isDigits(seg) {
		return seg
	}
	yy, _ := strconv.Atoi(seg)
	if yy > now.Year()%100 {
		return "19" + seg
	}
	return "20" + seg
}

// titleCase upper-cases every letter that follows a non-letter and
// lowercases the others, so digits split words: "gt3rs" is "Gt3Rs".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			r = unicode.ToTitle(r)
		case cased:
			r = unicode.ToLower(r)
		}
		prevCased = cased
		b.WriteRune(r)
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
