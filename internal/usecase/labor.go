package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"taiga-hours/internal/domain"
	"taiga-hours/internal/ports"
)

// LaborResolver reads the labor custom attribute of a task.
type LaborResolver struct {
	Log   *slog.Logger
	Taiga ports.TaigaClient

	// AttributeName is matched exactly against the project's attribute names.
	AttributeName string
}

// Resolve returns the labor hours recorded on task. ok is false when the
// project has no labor attribute, the task has no value for it, or the value
// is empty, non-numeric or zero. err is only set for failed requests.
func (r *LaborResolver) Resolve(ctx context.Context, task domain.Task) (hours float64, ok bool, err error) {
	attrs, err := r.Taiga.ListTaskAttributes(ctx, task.ProjectID)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("attributes of project %d: %w", task.ProjectID, err)
	}

	attr, found := findAttribute(attrs, r.AttributeName)
	if !found {
		return 0, false, nil
	}

	values, err := r.Taiga.TaskAttributeValues(ctx, task.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("attribute values of task %d: %w", task.ID, err)
	}

	raw, present := values.Values[strconv.FormatInt(attr.ID, 10)]
	if !present {
		return 0, false, nil
	}
	hours, ok = parseHours(raw)
	if !ok {
		r.Log.Debug("ignoring labor value", slog.Int64("task", task.ID), slog.String("value", string(raw)))
	}
	return hours, ok, nil
}

func findAttribute(attrs []domain.CustomAttribute, name string) (domain.CustomAttribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return domain.CustomAttribute{}, false
}

// parseHours accepts a JSON number or a JSON string that starts with a
// number, so "4 ч" and "2h" read as 4 and 2. A decimal comma is accepted in
// strings.
func parseHours(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = numericPrefix(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericPrefix returns the longest leading [+-]digits[.digits] of s, or ""
// when s does not start with a digit after the optional sign.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return ""
	}
	if i+1 < len(s) && s[i] == '.' && s[i+1] >= '0' && s[i+1] <= '9' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return s[:i]
}
