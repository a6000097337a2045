package executor

import (
	"github.com/nerrad567/homecast/internal/command"
	"github.com/nerrad567/homecast/internal/home"
)

// Characteristic value conventions.
const (
	lockUnsecured = 0
	lockSecured   = 1

	doorOpen   = 0
	doorClosed = 1

	// Thermostat target heating/cooling state
	thermostatOff  = 0
	thermostatHeat = 1
	thermostatCool = 2
	thermostatAuto = 3

	// Heater/cooler target state
	heaterCoolerAuto = 0
	heaterCoolerHeat = 1
	heaterCoolerCool = 2

	// Security system target state
	securityStay   = 0
	securityAway   = 1
	securityNight  = 2
	securityDisarm = 3

	maxPercent = 100
	maxHue     = 360
)

// apply performs action on one service and reports whether any write
// happened. A false return means the service lacks the capability.
func (s *session) apply(svc home.Service, a command.Action) bool {
	switch a.Kind {
	case command.ActionToggle:
		return s.toggle(svc)

	case command.ActionTurnOn, command.ActionTurnOff:
		on := a.Kind == command.ActionTurnOn
		if s.write(svc, home.CharPowerState, on) {
			return true
		}
		return s.write(svc, home.CharActive, boolToInt(on))

	case command.ActionSetBrightness:
		if !svc.Has(home.CharBrightness) {
			return false
		}
		v := clampInt(a.Value, 0, maxPercent)
		s.write(svc, home.CharBrightness, v)
		s.write(svc, home.CharPowerState, v > 0)
		return true

	case command.ActionSetColor:
		if !svc.Has(home.CharHue) || !svc.Has(home.CharSaturation) {
			return false
		}
		s.write(svc, home.CharHue, clampFloat(a.Hue, 0, maxHue))
		s.write(svc, home.CharSaturation, clampFloat(a.Saturation, 0, maxPercent))
		return true

	case command.ActionSetColorTemp:
		v := a.Value
		if svc.ColorTemperatureMin != nil && v < *svc.ColorTemperatureMin {
			v = *svc.ColorTemperatureMin
		}
		if svc.ColorTemperatureMax != nil && v > *svc.ColorTemperatureMax {
			v = *svc.ColorTemperatureMax
		}
		return s.write(svc, home.CharColorTemperature, v)

	case command.ActionSetPosition:
		return s.write(svc, home.CharTargetPosition, clampInt(a.Value, 0, maxPercent))

	case command.ActionSetTargetTemp:
		if s.write(svc, home.CharTargetTemperature, a.Temperature) {
			return true
		}
		cooled := s.write(svc, home.CharCoolingThreshold, a.Temperature)
		heated := s.write(svc, home.CharHeatingThreshold, a.Temperature)
		return cooled || heated

	case command.ActionSetMode:
		return s.setMode(svc, a.Mode)

	case command.ActionSetSpeed:
		return s.write(svc, home.CharRotationSpeed, clampInt(a.Value, 0, maxPercent))

	case command.ActionLock:
		return s.write(svc, home.CharLockTargetState, lockSecured)

	case command.ActionUnlock:
		return s.write(svc, home.CharLockTargetState, lockUnsecured)

	case command.ActionArm:
		state := securityStay
		switch a.ArmMode {
		case command.ArmAway:
			state = securityAway
		case command.ArmNight:
			state = securityNight
		}
		return s.write(svc, home.CharSecuritySystemTargetState, state)

	case command.ActionDisarm:
		return s.write(svc, home.CharSecuritySystemTargetState, securityDisarm)
	}
	return false
}

// toggle inverts the first capability present, in priority order.
func (s *session) toggle(svc home.Service) bool {
	switch {
	case svc.Has(home.CharPowerState):
		return s.write(svc, home.CharPowerState, !s.readBool(svc, home.CharPowerState))

	case svc.Has(home.CharActive):
		return s.write(svc, home.CharActive, boolToInt(s.readNumber(svc, home.CharActive) == 0))

	case svc.Has(home.CharLockTargetState):
		next := lockSecured
		if s.readNumber(svc, home.CharLockTargetState) == lockSecured {
			next = lockUnsecured
		}
		return s.write(svc, home.CharLockTargetState, next)

	case svc.Has(home.CharTargetPosition):
		next := maxPercent
		if s.readNumber(svc, home.CharTargetPosition) > 50 {
			next = 0
		}
		return s.write(svc, home.CharTargetPosition, next)

	case svc.Has(home.CharTargetDoorState):
		next := doorClosed
		if s.readNumber(svc, home.CharTargetDoorState) == doorClosed {
			next = doorOpen
		}
		return s.write(svc, home.CharTargetDoorState, next)

	case svc.Has(home.CharTargetHeatingCoolingState):
		next := thermostatAuto
		if s.readNumber(svc, home.CharTargetHeatingCoolingState) != thermostatOff {
			next = thermostatOff
		}
		return s.write(svc, home.CharTargetHeatingCoolingState, next)

	case svc.Has(home.CharBrightness):
		next := maxPercent
		if s.readNumber(svc, home.CharBrightness) > 0 {
			next = 0
		}
		return s.write(svc, home.CharBrightness, next)

	case svc.Has(home.CharSecuritySystemTargetState):
		next := securityDisarm
		if s.readNumber(svc, home.CharSecuritySystemTargetState) == securityDisarm {
			next = securityStay
		}
		return s.write(svc, home.CharSecuritySystemTargetState, next)
	}
	return false
}

func (s *session) setMode(svc home.Service, m command.ThermostatMode) bool {
	if svc.Has(home.CharTargetHeatingCoolingState) {
		state := thermostatOff
		switch m {
		case command.ModeHeat:
			state = thermostatHeat
		case command.ModeCool:
			state = thermostatCool
		case command.ModeAuto:
			state = thermostatAuto
		}
		return s.write(svc, home.CharTargetHeatingCoolingState, state)
	}

	if !svc.Has(home.CharTargetHeaterCoolerState) {
		return false
	}
	if m == command.ModeOff {
		return s.write(svc, home.CharActive, 0)
	}
	state := heaterCoolerAuto
	switch m {
	case command.ModeHeat:
		state = heaterCoolerHeat
	case command.ModeCool:
		state = heaterCoolerCool
	}
	s.write(svc, home.CharActive, 1)
	return s.write(svc, home.CharTargetHeaterCoolerState, state)
}

// write sends value to the service's kind characteristic, if present, and
// notifies the observer.
func (s *session) write(svc home.Service, kind home.CharacteristicKind, value any) bool {
	id, ok := svc.Characteristic(kind)
	if !ok {
		return false
	}
	s.bridge.WriteCharacteristic(id, value)
	if s.observer != nil {
		s.observer(id, value)
	}
	return true
}

// readBool reads a cached value as a boolean. Missing values read as false.
func (s *session) readBool(svc home.Service, kind home.CharacteristicKind) bool {
	id, _ := svc.Characteristic(kind)
	v, ok := s.bridge.CharacteristicValue(id)
	if !ok {
		return false
	}
	return home.AsBool(v)
}

// readNumber reads a cached value as a number. Missing values read as 0.
func (s *session) readNumber(svc home.Service, kind home.CharacteristicKind) float64 {
	id, _ := svc.Characteristic(kind)
	v, ok := s.bridge.CharacteristicValue(id)
	if !ok {
		return 0
	}
	return home.AsNumber(v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
