// Package planparse repairs and normalizes roadmap plans produced by a text
// generation model. Model output is untrusted: it may be wrapped in code
// fences or prose, carry trailing commas, or use a date-keyed map instead of
// the plan array.
package planparse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
)

const (
	KeyPlan     = "plan"
	KeyFeasible = "isFeasible"
	KeyReason   = "reason"
)

// Entry is one day of a plan. Err is set when the entry cannot be ingested;
// callers skip such entries instead of failing the whole plan.
type Entry struct {
	Index   int
	RawDate string
	Date    datex.Date
	Topic   string
	Titles  []string
	Err     error
}

// Parse repairs raw model output and decodes it into a normalized payload
// whose "plan" key is an array of {date, topic, tasks} objects.
func Parse(raw string) (map[string]any, error) {
	fixed, err := Repair(raw)
	if err != nil {
		return nil, &apperr.MalformedPlanError{Raw: raw, Cause: err}
	}
	var v any
	if err := sonic.UnmarshalString(fixed, &v); err != nil {
		return nil, &apperr.MalformedPlanError{Raw: raw, Cause: fmt.Errorf("decode: %w", err)}
	}
	payload, err := normalize(v)
	if err != nil {
		return nil, &apperr.MalformedPlanError{Raw: raw, Cause: err}
	}
	return payload, nil
}

// FromPayload accepts either an already structured payload or raw model text.
func FromPayload(v any) (map[string]any, error) {
	switch x := v.(type) {
	case string:
		return Parse(x)
	case map[string]any, []any:
		payload, err := normalize(x)
		if err != nil {
			return nil, apperr.Validation("ai_response", "%v", err)
		}
		return payload, nil
	default:
		return nil, &apperr.MalformedPlanError{Raw: fmt.Sprint(v), Cause: fmt.Errorf("unsupported payload type %T", v)}
	}
}

// Repair strips code fences and surrounding prose, then removes trailing
// commas that sit outside string literals.
func Repair(raw string) (string, error) {
	s := stripFences(raw)
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end < start {
		return "", errors.New("no JSON object found")
	}
	return stripTrailingCommas(s[start : end+1]), nil
}

func stripFences(s string) string {
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	body := s[open+3:]
	// drop the info string, e.g. ```json; content on the fence line stays
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isInfoString(strings.TrimSpace(body[:nl])) {
		body = body[nl+1:]
	}
	if closeIdx := strings.Index(body, "```"); closeIdx >= 0 {
		body = body[:closeIdx]
	}
	return body
}

func isInfoString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '+' || c == '-') {
			return false
		}
	}
	return true
}

func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			b.WriteByte(c)
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		if c == '"' {
			inStr = true
		} else if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func normalize(v any) (map[string]any, error) {
	switch x := v.(type) {
	case []any:
		return map[string]any{KeyPlan: x}, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = val
		}
		switch p := x[KeyPlan].(type) {
		case []any:
			return out, nil
		case map[string]any:
			out[KeyPlan] = datedEntries(p)
			return out, nil
		case nil:
			entries := datedEntries(x)
			if len(entries) == 0 {
				// an infeasible verdict legitimately comes without a plan
				if f, _ := Feasibility(x); f != nil && !*f {
					out[KeyPlan] = []any{}
					return out, nil
				}
				return nil, errors.New("payload has no plan")
			}
			for _, e := range entries {
				delete(out, e.(map[string]any)["date"].(string))
			}
			out[KeyPlan] = entries
			return out, nil
		default:
			// kept as-is so the caller reports the shape problem
			return out, nil
		}
	default:
		return nil, fmt.Errorf("unsupported plan shape %T", v)
	}
}

// datedEntries turns {"2024-01-01": [...]} into plan entries ordered by date.
// Keys that are not dates are ignored.
func datedEntries(m map[string]any) []any {
	type kv struct {
		key  string
		date datex.Date
		val  any
	}
	var rows []kv
	for k, v := range m {
		d, err := datex.Parse(k)
		if err != nil {
			continue
		}
		rows = append(rows, kv{key: k, date: d, val: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	out := make([]any, 0, len(rows))
	for _, r := range rows {
		entry := map[string]any{"date": r.key}
		if obj, ok := r.val.(map[string]any); ok {
			for k, v := range obj {
				entry[k] = v
			}
		} else {
			entry["tasks"] = r.val
		}
		out = append(out, entry)
	}
	return out
}

// Entries extracts the plan entries of a normalized payload. It fails only
// when the plan itself is not an array; per-entry problems land in Entry.Err.
func Entries(payload map[string]any) ([]Entry, error) {
	raw, ok := payload[KeyPlan].([]any)
	if !ok {
		return nil, apperr.Validation("ai_response.plan", "must be an array")
	}
	out := make([]Entry, 0, len(raw))
	for i, item := range raw {
		out = append(out, entryFrom(i, item))
	}
	return out, nil
}

func entryFrom(idx int, item any) Entry {
	e := Entry{Index: idx}
	obj, ok := item.(map[string]any)
	if !ok {
		e.Err = fmt.Errorf("entry %d is not an object", idx)
		return e
	}
	e.RawDate = stringField(obj, "date", "day")
	e.Topic = stringField(obj, "topic", "description", "title")

	d, err := datex.Parse(e.RawDate)
	if err != nil {
		e.Err = err
		return e
	}
	e.Date = d

	list, ok := obj["tasks"].([]any)
	if !ok {
		e.Err = fmt.Errorf("tasks for %s is not a list", e.RawDate)
		return e
	}
	for _, t := range list {
		if title := taskTitle(t); title != "" {
			e.Titles = append(e.Titles, title)
		}
	}
	return e
}

func taskTitle(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return stringField(x, "title", "task", "name")
	default:
		return ""
	}
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Feasibility reads the optional feasibility verdict the prompt asks for.
func Feasibility(payload map[string]any) (*bool, string) {
	reason, _ := payload[KeyReason].(string)
	switch v := payload[KeyFeasible].(type) {
	case bool:
		return &v, reason
	case string:
		b := strings.EqualFold(strings.TrimSpace(v), "true")
		return &b, reason
	default:
		return nil, reason
	}
}
