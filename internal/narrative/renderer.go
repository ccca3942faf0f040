// Package narrative turns structured insights into plain-text findings.
//
// Templates are keyed by the closed insight-type enumeration, not by loose
// strings: an unregistered type or an unreferenced evidence key is an
// explicit error at render time, never a silent blank. Output is plain text;
// escaping for any particular medium is the caller's problem.
package narrative

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abelbrown/trendlens/internal/model"
)

// MissingTemplateError reports that no template is registered for a type.
type MissingTemplateError struct {
	Type model.InsightType
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("no narrative template for insight type %q", e.Type)
}

// MissingEvidenceKeyError reports a template placeholder with no matching
// evidence value.
type MissingEvidenceKeyError struct {
	Type model.InsightType
	Key  string
}

func (e *MissingEvidenceKeyError) Error() string {
	return fmt.Sprintf("template for %q references missing evidence key %q", e.Type, e.Key)
}

// Templates maps each insight type to its narrative template. Placeholders
// are {key} or {key:%verb} where key names an evidence entry and the
// optional verb is an fmt formatting verb applied to the value.
type Templates map[model.InsightType]string

// Defaults returns the built-in templates, covering every insight type.
func Defaults() Templates {
	return Templates{
		model.TypeDelta:         "{theme} moved from {previous:%.1f} to {current:%.1f} ({delta:%+.1f}) since run {previous_run}.",
		model.TypeRisingTheme:   "{theme} posted the week's largest gain, up {delta:%+.1f} to {current:%.1f}.",
		model.TypeFallingTheme:  "{theme} posted the week's largest drop, down {delta:%+.1f} to {current:%.1f}.",
		model.TypeConcentration: "{theme} holds {share:%.2f} of this week's total score of {total_score:%.1f}, indicating concentration.",
		model.TypeAnomaly:       "{theme} scored {current:%.1f}, {ratio:%.1f} standard deviations from its historical mean of {mean:%.1f}.",
	}
}

// Renderer fills templates with insight evidence.
type Renderer struct {
	templates Templates
}

// NewRenderer creates a Renderer over the given templates. Pass Defaults()
// (optionally merged with a loaded override file) for normal operation.
func NewRenderer(templates Templates) *Renderer {
	return &Renderer{templates: templates}
}

// placeholderRe matches {key} and {key:%verb} tokens.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)(:[^{}]+)?\}`)

// Render produces the narrative for one insight. It fails with a
// *MissingTemplateError when the type has no template and with a
// *MissingEvidenceKeyError when a placeholder has no evidence value.
func (r *Renderer) Render(in model.Insight) (string, error) {
	tmpl, ok := r.templates[in.Type]
	if !ok {
		return "", &MissingTemplateError{Type: in.Type}
	}

	var missing *MissingEvidenceKeyError
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		parts := placeholderRe.FindStringSubmatch(token)
		key := parts[1]
		value, ok := in.Evidence[key]
		if !ok {
			if missing == nil {
				missing = &MissingEvidenceKeyError{Type: in.Type, Key: key}
			}
			return token
		}
		verb := strings.TrimPrefix(parts[2], ":")
		return formatValue(value, verb)
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// RenderAll renders every insight in order, returning a new slice with
// narratives attached. A rendering failure is isolated to its insight: the
// insight stays in the output without a narrative and the error is joined
// into the returned error. Nothing is ever dropped.
func (r *Renderer) RenderAll(insights []model.Insight) ([]model.Insight, error) {
	out := make([]model.Insight, len(insights))
	var errs []error
	for i, in := range insights {
		narrative, err := r.Render(in)
		if err != nil {
			errs = append(errs, err)
		}
		in.Narrative = narrative
		out[i] = in
	}
	return out, errors.Join(errs...)
}

// formatValue renders an evidence value. Without a verb, floats use the
// shortest exact decimal form so identical inputs always produce identical
// narrative bytes.
func formatValue(value any, verb string) string {
	if verb != "" {
		return fmt.Sprintf(verb, value)
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
