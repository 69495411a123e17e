package transfers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LerianStudio/lib-tangle/trinary"
)

// MaxScanInterval is the widest bounded window a single request may cover.
// It plays the same role as a page-size cap: wider scans must be split
// across requests.
const MaxScanInterval = 500

// FieldCode tags one validation failure reason on one request field.
type FieldCode string

// Validation failure codes.
const (
	// CodeMissingKey: a required field is absent.
	CodeMissingKey FieldCode = "missing_key"
	// CodeEmpty: the field is present but null or empty.
	CodeEmpty FieldCode = "empty_value"
	// CodeWrongType: the value's type cannot be coerced to the field's.
	CodeWrongType FieldCode = "wrong_type"
	// CodeTooSmall: a numeric value is below the field's minimum.
	CodeTooSmall FieldCode = "too_small"
	// CodeNotTrytes: the value contains characters outside the tryte
	// alphabet.
	CodeNotTrytes FieldCode = "not_trytes"
	// CodeUnexpectedKey: the request contains an unrecognized field.
	CodeUnexpectedKey FieldCode = "unexpected_key"
	// CodeIntervalInvalid: end precedes start.
	CodeIntervalInvalid FieldCode = "interval_invalid"
	// CodeIntervalTooBig: the window exceeds MaxScanInterval.
	CodeIntervalTooBig FieldCode = "interval_too_big"
)

// Report is the validation error for a raw request. It collects every
// failure across every field, keyed by field name, so callers can fix all
// problems from a single response.
type Report struct {
	Failures map[string][]FieldCode
}

// Error renders the report with fields in stable order.
func (r *Report) Error() string {
	fields := make([]string, 0, len(r.Failures))
	for field := range r.Failures {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))

	for _, field := range fields {
		codes := make([]string, 0, len(r.Failures[field]))
		for _, code := range r.Failures[field] {
			codes = append(codes, string(code))
		}

		parts = append(parts, fmt.Sprintf("%s=[%s]", field, strings.Join(codes, ", ")))
	}

	return "transfers: invalid request: " + strings.Join(parts, "; ")
}

// Codes returns the failure codes recorded for a field, nil if it passed.
func (r *Report) Codes(field string) []FieldCode {
	return r.Failures[field]
}

func (r *Report) add(field string, code FieldCode) {
	if r.Failures == nil {
		r.Failures = make(map[string][]FieldCode)
	}

	r.Failures[field] = append(r.Failures[field], code)
}

func (r *Report) empty() bool { return len(r.Failures) == 0 }

// Request is a validated, normalized transfer-scan request.
type Request struct {
	// Seed is the derivation root. Never persisted.
	Seed trinary.Seed

	// Start is the first derivation index to scan.
	Start int

	// End, when set, bounds the scan to indices [Start, *End). When nil
	// the scan is unbounded and terminates heuristically.
	End *int

	// InclusionStates requests per-transaction confirmation flags.
	InclusionStates bool
}

// Recognized request fields.
const (
	fieldSeed            = "seed"
	fieldStart           = "start"
	fieldEnd             = "end"
	fieldInclusionStates = "inclusion_states"
)

// ParseRequest normalizes a loosely-typed request mapping into a Request.
// On failure it returns a *Report carrying every violation at once; it
// never stops at the first problem and performs no network access.
//
// Defaults: start 0, end absent, inclusion_states false. A nil value for an
// optional field selects its default.
func ParseRequest(raw map[string]any) (Request, error) {
	var report Report

	for key := range raw {
		switch key {
		case fieldSeed, fieldStart, fieldEnd, fieldInclusionStates:
		default:
			report.add(key, CodeUnexpectedKey)
		}
	}

	req := Request{
		Seed:            parseSeed(raw, &report),
		InclusionStates: parseInclusionStates(raw, &report),
	}

	start, startOK := parseBound(raw, fieldStart, &report)
	req.Start = start

	end, endOK := parseEnd(raw, &report)
	req.End = end

	// The cross-field rule applies only once both bounds individually
	// validate.
	if startOK && endOK && end != nil {
		switch {
		case *end < start:
			report.add(fieldStart, CodeIntervalInvalid)
		case *end-start > MaxScanInterval:
			report.add(fieldEnd, CodeIntervalTooBig)
		}
	}

	if !report.empty() {
		return Request{}, &report
	}

	return req, nil
}

// parseSeed coerces the seed field into a canonical Seed. Already-typed
// seeds and raw byte data are accepted; decoded text (a Go string) is not,
// mirroring the distinction between raw and decoded input.
func parseSeed(raw map[string]any, report *Report) trinary.Seed {
	value, present := raw[fieldSeed]
	if !present {
		report.add(fieldSeed, CodeMissingKey)
		return ""
	}

	var (
		seed trinary.Seed
		err  error
	)

	switch v := value.(type) {
	case nil:
		report.add(fieldSeed, CodeEmpty)
		return ""
	case trinary.Seed:
		seed, err = v, v.Validate()
	case trinary.Trytes:
		seed, err = trinary.Seed(v), trinary.ValidTrytes(string(v))
	case []byte:
		seed, err = trinary.SeedFromBytes(v)
	default:
		report.add(fieldSeed, CodeWrongType)
		return ""
	}

	if err != nil {
		report.add(fieldSeed, CodeNotTrytes)
		return ""
	}

	if seed == "" {
		report.add(fieldSeed, CodeEmpty)
		return ""
	}

	return seed
}

// parseBound validates an optional non-negative integer field. The second
// return value reports whether the field is individually valid.
func parseBound(raw map[string]any, field string, report *Report) (int, bool) {
	value, present := raw[field]
	if !present || value == nil {
		return 0, true
	}

	n, ok := asInt(value)
	if !ok {
		report.add(field, CodeWrongType)
		return 0, false
	}

	if n < 0 {
		report.add(field, CodeTooSmall)
		return 0, false
	}

	return n, true
}

// parseEnd is parseBound for the end field, preserving absence.
func parseEnd(raw map[string]any, report *Report) (*int, bool) {
	value, present := raw[fieldEnd]
	if !present || value == nil {
		return nil, true
	}

	n, ok := parseBound(raw, fieldEnd, report)
	if !ok {
		return nil, false
	}

	return &n, true
}

// asInt accepts exact integer types only. Floats and numeric strings are
// deliberately rejected: a fractional or textual index is a caller bug, not
// something to round away.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	default:
		return 0, false
	}
}

// parseInclusionStates validates the inclusion_states flag.
func parseInclusionStates(raw map[string]any, report *Report) bool {
	value, present := raw[fieldInclusionStates]
	if !present || value == nil {
		return false
	}

	flag, ok := value.(bool)
	if !ok {
		report.add(fieldInclusionStates, CodeWrongType)
		return false
	}

	return flag
}
