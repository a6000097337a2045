package command

import "strings"

// FromPath builds a Command from the HTTP path grammar
// /<action>/<value...>/<target...>, where segments are the already
// percent-decoded path segments after the action. The number of value
// segments per action is the same as for FromURL. Target segments keep
// their case and are rejoined with "/".
//
// Failures are returned as *ParseError with Input set to the joined path.
func FromPath(action string, segments []string) (Command, error) {
	var kept []string
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			kept = append(kept, seg)
		}
	}

	name := strings.ToLower(strings.TrimSpace(action))
	p := &parser{
		input: strings.Join(append([]string{action}, kept...), "/"),
		raw:   kept,
	}
	for _, seg := range kept {
		p.lower = append(p.lower, strings.ToLower(seg))
	}

	rule, ok := urlActions[name]
	if !ok {
		return Command{}, p.fail(UnknownAction, action)
	}
	if len(kept) <= rule.values {
		return Command{}, p.fail(MissingTarget, "")
	}
	target := strings.Join(kept[rule.values:], "/")

	var (
		a   Action
		err error
	)
	switch name {
	case "toggle":
		a = Toggle()
	case "on":
		a = TurnOn()
	case "off":
		a = TurnOff()
	case "lock":
		a = Lock()
	case "unlock":
		a = Unlock()
	case "open":
		a = SetPosition(maxPercent)
	case "close":
		a = SetPosition(minPercent)
	case "disarm":
		a = Disarm()
	case "brightness":
		var v int
		v, err = p.intIn(0, minPercent, maxPercent)
		a = SetBrightness(v)
	case "position":
		var v int
		v, err = p.intIn(0, minPercent, maxPercent)
		a = SetPosition(v)
	case "speed":
		var v int
		v, err = p.intIn(0, minPercent, maxPercent)
		a = SetSpeed(v)
	case "temp":
		var v float64
		v, err = p.floatIn(0, minTemperature, maxTemperature)
		a = SetTargetTemp(v)
	case "color":
		var h, s float64
		if h, err = p.floatIn(0, 0, maxHue); err == nil {
			s, err = p.floatIn(1, 0, maxSaturation)
		}
		a = SetColor(h, s)
	case "arm":
		m, ok := ParseArmMode(p.lower[0])
		if !ok {
			err = p.fail(InvalidValue, p.raw[0])
		}
		a = ArmSystem(m)
	case "scene":
		a = ExecuteScene()
		target = scenePrefix + target
	}
	if err != nil {
		return Command{}, err
	}
	return Command{Target: target, Action: a}, nil
}
