package command

import (
	"math"
	"strconv"
	"strings"
)

// Value ranges accepted by the set rules.
const (
	minPercent     = 0
	maxPercent     = 100
	minTemperature = 10.0
	maxTemperature = 38.0
	maxHue         = 360.0
	maxSaturation  = 100.0

	scenePrefix = "scene."
)

// Command is a parsed command: what to do and to what.
type Command struct {
	Target string
	Action Action
}

// parser carries the tokens of one Parse call. lower drives keyword
// matching and targets; raw is kept so invalid values are reported as typed.
type parser struct {
	input string
	lower []string
	raw   []string
}

// Parse parses a free-text command.
//
// Input is trimmed and lower-cased before tokenising on whitespace.
// Failures are returned as *ParseError.
func Parse(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	p := &parser{
		input: input,
		lower: strings.Fields(strings.ToLower(trimmed)),
		raw:   strings.Fields(trimmed),
	}
	if len(p.lower) == 0 {
		return Command{}, p.fail(EmptyCommand, "")
	}

	switch p.lower[0] {
	case "toggle":
		return p.simple(Toggle())
	case "on":
		return p.simple(TurnOn())
	case "off":
		return p.simple(TurnOff())
	case "lock":
		return p.simple(Lock())
	case "unlock":
		return p.simple(Unlock())
	case "open":
		return p.simple(SetPosition(maxPercent))
	case "close":
		return p.simple(SetPosition(minPercent))
	case "disarm":
		return p.simple(Disarm())
	case "turn":
		return p.turn()
	case "set":
		return p.set()
	case "execute", "run", "activate":
		return p.scene()
	case "arm":
		return p.arm()
	default:
		return Command{Target: strings.Join(p.lower, " "), Action: Toggle()}, nil
	}
}

func (p *parser) fail(kind ParseErrorKind, token string) error {
	return &ParseError{Kind: kind, Input: p.input, Token: token}
}

// target joins the tokens from index i onwards.
func (p *parser) target(i int) (string, error) {
	if i >= len(p.lower) {
		return "", p.fail(MissingTarget, "")
	}
	return strings.Join(p.lower[i:], " "), nil
}

func (p *parser) simple(a Action) (Command, error) {
	t, err := p.target(1)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: t, Action: a}, nil
}

func (p *parser) turn() (Command, error) {
	if len(p.lower) < 2 {
		return Command{}, p.fail(MissingTarget, "")
	}
	var a Action
	switch p.lower[1] {
	case "on":
		a = TurnOn()
	case "off":
		a = TurnOff()
	default:
		return Command{}, p.fail(UnknownAction, p.raw[1])
	}
	t, err := p.target(2)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: t, Action: a}, nil
}

func (p *parser) set() (Command, error) {
	if len(p.lower) < 2 {
		return Command{}, p.fail(MissingTarget, "")
	}

	sub := p.lower[1]
	var (
		a     Action
		nargs = 1
		err   error
	)
	switch sub {
	case "color", "colour":
		nargs = 2
	case "brightness", "bright", "dim", "position", "pos", "temperature", "temp",
		"colortemp", "colourtemp", "ct", "mode", "speed":
	default:
		return Command{}, p.fail(UnknownAction, p.raw[1])
	}

	// value tokens plus at least one target token
	if len(p.lower) < 2+nargs+1 {
		return Command{}, p.fail(MissingTarget, "")
	}

	switch sub {
	case "brightness", "bright", "dim":
		var v int
		v, err = p.intIn(2, minPercent, maxPercent)
		a = SetBrightness(v)
	case "position", "pos":
		var v int
		v, err = p.intIn(2, minPercent, maxPercent)
		a = SetPosition(v)
	case "speed":
		var v int
		v, err = p.intIn(2, minPercent, maxPercent)
		a = SetSpeed(v)
	case "temperature", "temp":
		var v float64
		v, err = p.floatIn(2, minTemperature, maxTemperature)
		a = SetTargetTemp(v)
	case "colortemp", "colourtemp", "ct":
		var v int
		v, err = p.intIn(2, 1, math.MaxInt32)
		a = SetColorTemp(v)
	case "color", "colour":
		var h, s float64
		if h, err = p.floatIn(2, 0, maxHue); err == nil {
			s, err = p.floatIn(3, 0, maxSaturation)
		}
		a = SetColor(h, s)
	case "mode":
		m, ok := ParseThermostatMode(p.lower[2])
		if !ok {
			err = p.fail(InvalidValue, p.raw[2])
		}
		a = SetMode(m)
	}
	if err != nil {
		return Command{}, err
	}

	t, err := p.target(2 + nargs)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: t, Action: a}, nil
}

func (p *parser) intIn(i, lo, hi int) (int, error) {
	v, err := strconv.Atoi(p.lower[i])
	if err != nil || v < lo || v > hi {
		return 0, p.fail(InvalidValue, p.raw[i])
	}
	return v, nil
}

func (p *parser) floatIn(i int, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(p.lower[i], 64)
	if err != nil || math.IsNaN(v) || v < lo || v > hi {
		return 0, p.fail(InvalidValue, p.raw[i])
	}
	return v, nil
}

func (p *parser) scene() (Command, error) {
	start := 1
	if len(p.lower) > 1 && p.lower[1] == "scene" {
		start = 2
	}
	name, err := p.target(start)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: scenePrefix + name, Action: ExecuteScene()}, nil
}

func (p *parser) arm() (Command, error) {
	if len(p.lower) < 2 {
		return Command{}, p.fail(MissingTarget, "")
	}
	m, ok := ParseArmMode(p.lower[1])
	if !ok {
		return Command{}, p.fail(InvalidValue, p.raw[1])
	}
	t, err := p.target(2)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: t, Action: ArmSystem(m)}, nil
}
