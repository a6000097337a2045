package home

// CharacteristicKind names the capability a characteristic id provides.
type CharacteristicKind string

// Characteristic kinds. The string values are the wire labels used in
// stream events and info payloads.
const (
	// Power and activity
	CharPowerState CharacteristicKind = "power_state"
	CharActive     CharacteristicKind = "active"

	// Lighting
	CharBrightness       CharacteristicKind = "brightness"
	CharHue              CharacteristicKind = "hue"
	CharSaturation       CharacteristicKind = "saturation"
	CharColorTemperature CharacteristicKind = "color_temperature"

	// Covers and doors
	CharCurrentPosition  CharacteristicKind = "current_position"
	CharTargetPosition   CharacteristicKind = "target_position"
	CharCurrentDoorState CharacteristicKind = "current_door_state"
	CharTargetDoorState  CharacteristicKind = "target_door_state"

	// Locks
	CharLockCurrentState CharacteristicKind = "lock_current_state"
	CharLockTargetState  CharacteristicKind = "lock_target_state"

	// Climate
	CharCurrentTemperature         CharacteristicKind = "current_temperature"
	CharTargetTemperature          CharacteristicKind = "target_temperature"
	CharCoolingThreshold           CharacteristicKind = "cooling_threshold_temperature"
	CharHeatingThreshold           CharacteristicKind = "heating_threshold_temperature"
	CharCurrentHeatingCoolingState CharacteristicKind = "current_heating_cooling_state"
	CharTargetHeatingCoolingState  CharacteristicKind = "target_heating_cooling_state"
	CharCurrentHeaterCoolerState   CharacteristicKind = "current_heater_cooler_state"
	CharTargetHeaterCoolerState    CharacteristicKind = "target_heater_cooler_state"
	CharRotationSpeed              CharacteristicKind = "rotation_speed"
	CharCurrentRelativeHumidity    CharacteristicKind = "current_relative_humidity"

	// Security
	CharSecuritySystemCurrentState CharacteristicKind = "security_system_current_state"
	CharSecuritySystemTargetState  CharacteristicKind = "security_system_target_state"

	// Sensors
	CharMotionDetected CharacteristicKind = "motion_detected"
	CharContactState   CharacteristicKind = "contact_state"
	CharBatteryLevel   CharacteristicKind = "battery_level"
)

// characteristicKinds fixes the enumeration order used when indexing and
// when rendering info payloads.
var characteristicKinds = []CharacteristicKind{
	CharPowerState,
	CharActive,
	CharBrightness,
	CharHue,
	CharSaturation,
	CharColorTemperature,
	CharCurrentPosition,
	CharTargetPosition,
	CharCurrentDoorState,
	CharTargetDoorState,
	CharLockCurrentState,
	CharLockTargetState,
	CharCurrentTemperature,
	CharTargetTemperature,
	CharCoolingThreshold,
	CharHeatingThreshold,
	CharCurrentHeatingCoolingState,
	CharTargetHeatingCoolingState,
	CharCurrentHeaterCoolerState,
	CharTargetHeaterCoolerState,
	CharRotationSpeed,
	CharCurrentRelativeHumidity,
	CharSecuritySystemCurrentState,
	CharSecuritySystemTargetState,
	CharMotionDetected,
	CharContactState,
	CharBatteryLevel,
}

// CharacteristicKinds returns every known kind in a stable order.
func CharacteristicKinds() []CharacteristicKind {
	out := make([]CharacteristicKind, len(characteristicKinds))
	copy(out, characteristicKinds)
	return out
}

// IsKnown reports whether k is one of the defined kinds.
func (k CharacteristicKind) IsKnown() bool {
	for _, known := range characteristicKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ServiceType tags the kind of device a service represents. It is
// descriptive only; the executor never derives capability from it.
type ServiceType string

// Service types.
const (
	ServiceLightbulb      ServiceType = "lightbulb"
	ServiceSwitch         ServiceType = "switch"
	ServiceOutlet         ServiceType = "outlet"
	ServiceFan            ServiceType = "fan"
	ServiceLock           ServiceType = "lock"
	ServiceThermostat     ServiceType = "thermostat"
	ServiceHeaterCooler   ServiceType = "heater_cooler"
	ServiceWindowCovering ServiceType = "window_covering"
	ServiceDoor           ServiceType = "door"
	ServiceGarageDoor     ServiceType = "garage_door"
	ServiceSecuritySystem ServiceType = "security_system"
	ServiceSensor         ServiceType = "sensor"
	ServiceValve          ServiceType = "valve"
	ServiceOther          ServiceType = "other"
)
