package docgen

import (
	"strings"
	"time"
	"unicode"
)

// Fields holds user-supplied values keyed by field key
type Fields map[string]string

// Get returns the value of key, or "" when it is missing
func (f Fields) Get(key string) string {
	return f[key]
}

// Merge returns a copy of f with every non-empty value of other applied
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Placeholders is an ordered token to value mapping. Setting an existing
// token replaces its value but keeps its position.
type Placeholders struct {
	tokens []string
	values map[string]string
}

// NewPlaceholders creates an empty mapping
func NewPlaceholders() *Placeholders {
	return &Placeholders{values: make(map[string]string)}
}

// Set maps token to value
func (p *Placeholders) Set(token, value string) {
	if _, ok := p.values[token]; !ok {
		p.tokens = append(p.tokens, token)
	}
	p.values[token] = value
}

// Get returns the value mapped to token
func (p *Placeholders) Get(token string) (string, bool) {
	v, ok := p.values[token]
	return v, ok
}

// Tokens returns the tokens in insertion order
func (p *Placeholders) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Len returns the number of tokens
func (p *Placeholders) Len() int {
	return len(p.tokens)
}

// Each calls fn for every token in insertion order
func (p *Placeholders) Each(fn func(token, value string)) {
	for _, t := range p.tokens {
		fn(t, p.values[t])
	}
}

// Replace applies every mapping to s in order
func (p *Placeholders) Replace(s string) string {
	p.Each(func(token, value string) {
		if token != "" {
			s = strings.ReplaceAll(s, token, value)
		}
	})
	return s
}

// BuildEnv supplies the values that do not come from the user
type BuildEnv struct {
	Now     func() time.Time
	Counter *InvoiceCounter
}

func (e BuildEnv) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// DisplayDateLayout is the day-first layout used in generated documents
const DisplayDateLayout = "02-01-2006"

// NormalizeValue trims a user-supplied value and drops control characters
// that cannot appear in document text. Everything else, angle brackets and
// ampersands included, is kept as typed; the DOCX and PDF writers escape it.
func NormalizeValue(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// BuildPlaceholders maps every token of spec to its value. Input fields take
// the normalized user value (missing values become empty text), date fields
// the generation date and counter fields the next invoice number.
func BuildPlaceholders(spec DocumentSpec, fields Fields, env BuildEnv) *Placeholders {
	ph := NewPlaceholders()
	for _, f := range spec.Fields {
		if f.Token == "" {
			continue
		}
		switch f.Source {
		case SourceToday:
			ph.Set(f.Token, env.now().Format(DisplayDateLayout))
		case SourceCounter:
			if env.Counter != nil {
				ph.Set(f.Token, env.Counter.Next())
			} else {
				ph.Set(f.Token, NormalizeValue(fields.Get(f.Key)))
			}
		default:
			ph.Set(f.Token, NormalizeValue(fields.Get(f.Key)))
		}
	}
	return ph
}
