package command

import "fmt"

// ActionKind identifies an Action variant.
type ActionKind string

// Action kinds.
const (
	ActionToggle        ActionKind = "toggle"
	ActionTurnOn        ActionKind = "turn_on"
	ActionTurnOff       ActionKind = "turn_off"
	ActionSetBrightness ActionKind = "set_brightness"
	ActionSetColor      ActionKind = "set_color"
	ActionSetColorTemp  ActionKind = "set_color_temp"
	ActionSetPosition   ActionKind = "set_position"
	ActionSetTargetTemp ActionKind = "set_target_temp"
	ActionSetMode       ActionKind = "set_mode"
	ActionSetSpeed      ActionKind = "set_speed"
	ActionLock          ActionKind = "lock"
	ActionUnlock        ActionKind = "unlock"
	ActionArm           ActionKind = "arm"
	ActionDisarm        ActionKind = "disarm"
	ActionExecuteScene  ActionKind = "execute_scene"
)

// ThermostatMode is the requested heating/cooling mode.
type ThermostatMode string

// Thermostat modes.
const (
	ModeOff  ThermostatMode = "off"
	ModeHeat ThermostatMode = "heat"
	ModeCool ThermostatMode = "cool"
	ModeAuto ThermostatMode = "auto"
)

// ParseThermostatMode accepts the mode words of the command grammar.
func ParseThermostatMode(word string) (ThermostatMode, bool) {
	switch word {
	case "off":
		return ModeOff, true
	case "heat", "heating":
		return ModeHeat, true
	case "cool", "cooling":
		return ModeCool, true
	case "auto", "automatic":
		return ModeAuto, true
	}
	return "", false
}

// ArmMode is the requested security system arming mode.
type ArmMode string

// Arm modes.
const (
	ArmStay  ArmMode = "stay"
	ArmAway  ArmMode = "away"
	ArmNight ArmMode = "night"
)

// ParseArmMode accepts stay, away and night.
func ParseArmMode(word string) (ArmMode, bool) {
	switch ArmMode(word) {
	case ArmStay, ArmAway, ArmNight:
		return ArmMode(word), true
	}
	return "", false
}

// Action is a closed set of device operations. Kind selects the variant;
// only the fields belonging to that variant are meaningful.
type Action struct {
	Kind ActionKind `json:"kind"`

	// Brightness, position, speed (0-100) or colour temperature (mireds)
	Value int `json:"value,omitempty"`

	// Colour
	Hue        float64 `json:"hue,omitempty"`
	Saturation float64 `json:"saturation,omitempty"`

	// Target temperature in degrees Celsius
	Temperature float64 `json:"temperature,omitempty"`

	Mode    ThermostatMode `json:"mode,omitempty"`
	ArmMode ArmMode        `json:"arm_mode,omitempty"`
}

// Toggle inverts the first applicable capability.
func Toggle() Action { return Action{Kind: ActionToggle} }

// TurnOn switches power or activity on.
func TurnOn() Action { return Action{Kind: ActionTurnOn} }

// TurnOff switches power or activity off.
func TurnOff() Action { return Action{Kind: ActionTurnOff} }

// SetBrightness sets brightness in percent.
func SetBrightness(v int) Action { return Action{Kind: ActionSetBrightness, Value: v} }

// SetColor sets hue (degrees) and saturation (percent).
func SetColor(hue, saturation float64) Action {
	return Action{Kind: ActionSetColor, Hue: hue, Saturation: saturation}
}

// SetColorTemp sets colour temperature in mireds.
func SetColorTemp(mired int) Action { return Action{Kind: ActionSetColorTemp, Value: mired} }

// SetPosition sets a cover or door position in percent.
func SetPosition(v int) Action { return Action{Kind: ActionSetPosition, Value: v} }

// SetTargetTemp sets the target temperature in degrees Celsius.
func SetTargetTemp(t float64) Action { return Action{Kind: ActionSetTargetTemp, Temperature: t} }

// SetMode sets the heating/cooling mode.
func SetMode(m ThermostatMode) Action { return Action{Kind: ActionSetMode, Mode: m} }

// SetSpeed sets fan speed in percent.
func SetSpeed(v int) Action { return Action{Kind: ActionSetSpeed, Value: v} }

// Lock secures a lock.
func Lock() Action { return Action{Kind: ActionLock} }

// Unlock releases a lock.
func Unlock() Action { return Action{Kind: ActionUnlock} }

// ArmSystem arms a security system in mode m.
func ArmSystem(m ArmMode) Action { return Action{Kind: ActionArm, ArmMode: m} }

// Disarm disarms a security system.
func Disarm() Action { return Action{Kind: ActionDisarm} }

// ExecuteScene runs the scene named by the target.
func ExecuteScene() Action { return Action{Kind: ActionExecuteScene} }

// String renders the action for logs and messages.
func (a Action) String() string {
	switch a.Kind {
	case ActionSetBrightness, ActionSetPosition, ActionSetSpeed, ActionSetColorTemp:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Value)
	case ActionSetColor:
		return fmt.Sprintf("%s(%g,%g)", a.Kind, a.Hue, a.Saturation)
	case ActionSetTargetTemp:
		return fmt.Sprintf("%s(%g)", a.Kind, a.Temperature)
	case ActionSetMode:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Mode)
	case ActionArm:
		return fmt.Sprintf("%s(%s)", a.Kind, a.ArmMode)
	default:
		return string(a.Kind)
	}
}
