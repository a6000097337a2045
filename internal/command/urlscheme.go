package command

import (
	"net/url"
	"strings"
)

// urlActions maps URL hosts to command text prefixes and the number of
// leading path segments consumed as values.
var urlActions = map[string]struct {
	prefix string
	values int
}{
	"toggle":     {"toggle", 0},
	"on":         {"on", 0},
	"off":        {"off", 0},
	"lock":       {"lock", 0},
	"unlock":     {"unlock", 0},
	"open":       {"open", 0},
	"close":      {"close", 0},
	"disarm":     {"disarm", 0},
	"brightness": {"set brightness", 1},
	"position":   {"set position", 1},
	"temp":       {"set temperature", 1},
	"speed":      {"set speed", 1},
	"color":      {"set color", 2},
	"arm":        {"arm", 1},
	"scene":      {"execute scene", 0},
}

// FromURL translates a URL-scheme invocation such as
// homecast://brightness/50/Office/Lamp into command text
// ("set brightness 50 Office/Lamp"). Path segments are percent-decoded
// and the target segments rejoined with "/".
//
// When scheme is non-empty the URL scheme must match it. It reports false
// for an unknown action or when the value or target segments are missing.
func FromURL(raw, scheme string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if scheme != "" && !strings.EqualFold(u.Scheme, scheme) {
		return "", false
	}

	action, ok := urlActions[strings.ToLower(u.Host)]
	if !ok {
		return "", false
	}

	var segments []string
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		if dec, err := url.PathUnescape(seg); err == nil {
			seg = dec
		}
		segments = append(segments, seg)
	}
	if len(segments) <= action.values {
		return "", false
	}

	parts := []string{action.prefix}
	parts = append(parts, segments[:action.values]...)
	parts = append(parts, strings.Join(segments[action.values:], "/"))
	return strings.Join(parts, " "), true
}
