// Package reply decodes untrusted completion output.
//
// Parse only guarantees a JSON object; it says nothing about which fields exist or what
// types they hold. Callers read fields through the total accessors below, which never
// fail and fall back to zero values.
package reply

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

// Parse decodes raw model output into a JSON object.
// Markdown code fences are stripped; if the reply is wrapped in prose, the outermost
// {...} span is tried. Anything else is domain.ErrMalformedReply.
func Parse(raw string) (gjson.Result, error) {
	text := StripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return gjson.Result{}, fmt.Errorf("empty reply: %w", domain.ErrMalformedReply)
	}

	if gjson.Valid(text) {
		doc := gjson.Parse(text)
		if !doc.IsObject() {
			return gjson.Result{}, fmt.Errorf("reply is %s, not an object: %w", kind(doc), domain.ErrMalformedReply)
		}
		return doc, nil
	}

	if span, ok := outermostObject(text); ok && gjson.Valid(span) {
		return gjson.Parse(span), nil
	}

	return gjson.Result{}, fmt.Errorf("reply is not valid JSON: %w", domain.ErrMalformedReply)
}

// StripCodeFences removes a surrounding ```json ... ``` (or bare ```) block.
func StripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text[3:]
	// drop the info string ("json") up to the first newline
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	body = strings.TrimRight(body, " \t\r\n")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func outermostObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func kind(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "an array"
	case r.Type == gjson.String:
		return "a string"
	case r.Type == gjson.Number:
		return "a number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "a boolean"
	default:
		return "null"
	}
}

// String returns the trimmed string value of r.
// Numbers and booleans are rendered as text; objects, arrays and null yield "".
func String(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		return strconv.FormatFloat(r.Num, 'f', -1, 64)
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return ""
	}
}

// Number coerces r to a finite float64. Numeric strings are parsed;
// anything else, NaN and infinities yield 0.
func Number(r gjson.Result) float64 {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0
		}
		v = f
	case gjson.True:
		v = 1
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Strings returns the string elements of a JSON array.
// Non-arrays yield an empty (non-nil) slice; blank elements are dropped.
func Strings(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, el := range r.Array() {
		if s := String(el); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns the object elements of the array at key in doc.
// key must be a plain field name. A missing key or a non-array value yields nil.
func Objects(doc gjson.Result, key string) []gjson.Result {
	list := doc.Get(key)
	if !list.IsArray() {
		return nil
	}
	var out []gjson.Result
	for _, el := range list.Array() {
		if el.IsObject() {
			out = append(out, el)
		}
	}
	return out
}
