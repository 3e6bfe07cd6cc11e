// Package diag provides the structured diagnostic type shared by every
// compiler stage: lexer, parser, type checker, and code generator all
// accumulate Reports in a common list rather than returning bare errors.
package diag

import (
	"encoding/json"
	"fmt"
)

// Severity distinguishes diagnostics that halt compilation from advisory
// ones that do not.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Pos is a source position: a 1-based line and column plus the originating
// file name.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Report is the canonical diagnostic record produced by every stage.
// Code is one of the taxonomy constants in codes.go.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity Severity       `json:"-"`
	Sev      string         `json:"severity"`
	Pos      Pos            `json:"-"`
	At       string         `json:"at"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// New builds a Report, stamping the schema and the string mirrors of the
// Severity/Pos fields used for JSON rendering.
func New(code, phase string, sev Severity, pos Pos, message string) *Report {
	return &Report{
		Schema:   "czar.diagnostic/v1",
		Code:     code,
		Phase:    phase,
		Severity: sev,
		Sev:      sev.String(),
		Pos:      pos,
		At:       pos.String(),
		Message:  message,
	}
}

// Error implements the error interface so a Report can be returned from
// ordinary Go functions when convenient.
func (r *Report) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", r.Pos, r.Severity, r.Code, r.Message)
}

// String renders the user-visible FILE:LINE:COL: severity: message form
// specified for standard-error output.
func (r *Report) String() string {
	return fmt.Sprintf("%s: %s: %s", r.Pos, r.Severity, r.Message)
}

// ToJSON renders the report as the czar.diagnostic/v1 envelope, keys in
// the struct's field order.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List is the accumulate-and-continue diagnostic sink threaded through all
// stages. Errors halt compilation at the next stage boundary; warnings
// never do.
type List struct {
	reports []*Report
}

func (l *List) Add(r *Report) { l.reports = append(l.reports, r) }

func (l *List) Errorf(code, phase string, pos Pos, format string, args ...any) {
	l.Add(New(code, phase, Error, pos, fmt.Sprintf(format, args...)))
}

func (l *List) Warnf(code, phase string, pos Pos, format string, args ...any) {
	l.Add(New(code, phase, Warning, pos, fmt.Sprintf(format, args...)))
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// The driver consults this at every stage boundary (spec §7's propagation
// policy): warnings alone never halt compilation.
func (l *List) HasErrors() bool {
	for _, r := range l.reports {
		if r.Severity == Error {
			return true
		}
	}
	return false
}

func (l *List) All() []*Report { return l.reports }

func (l *List) Len() int { return len(l.reports) }
