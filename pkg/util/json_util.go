package util

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText pulls the JSON payload out of a model response that may
// wrap it in a markdown code fence or surround it with prose. Returns the raw
// text unchanged when no JSON-looking region exists.
func ExtractJsonFromText(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := firstIndexAny(text, "{", "[")
	if start == -1 {
		return text
	}
	end := lastIndexAny(text, "}", "]")
	if end > start {
		return text[start : end+1]
	}
	return text
}

// DecodeModelJson extracts and unmarshals JSON from a model response in one
// step.
func DecodeModelJson(text string, v any) error {
	return json.Unmarshal([]byte(ExtractJsonFromText(text)), v)
}

func firstIndexAny(s string, subs ...string) int {
	idx := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i != -1 && (idx == -1 || i < idx) {
			idx = i
		}
	}
	return idx
}

func lastIndexAny(s string, subs ...string) int {
	idx := -1
	for _, sub := range subs {
		if i := strings.LastIndex(s, sub); i > idx {
			idx = i
		}
	}
	return idx
}
