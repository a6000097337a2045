package hue

import (
	"math"
	"strconv"
	"strings"

	"github.com/amimof/huego"
	"github.com/google/uuid"

	"github.com/nerrad567/homecast/internal/home"
)

// Hue API value ranges.
const (
	maxBri = 254
	maxSat = 254
	maxHue = 65535

	// Colour temperature bounds in mireds shared by Hue white ambiance lamps.
	minMired = 153
	maxMired = 500
)

// namespace derives stable ids from Hue unique ids.
var namespace = uuid.MustParse("6f1b7c8e-3d4a-5b6c-9d7e-8f9a0b1c2d3e")

func stableID(parts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.Join(parts, "/"))).String()
}

// lightKey identifies a light across polls. Lights without a unique id
// fall back to their bridge-local number.
func lightKey(l huego.Light) string {
	if l.UniqueID != "" {
		return l.UniqueID
	}
	return "light-" + strconv.Itoa(l.ID)
}

// capabilities returns the characteristic kinds a light type supports.
func capabilities(lightType string) []home.CharacteristicKind {
	t := strings.ToLower(lightType)
	kinds := []home.CharacteristicKind{home.CharPowerState}
	if strings.Contains(t, "dimmable") || strings.Contains(t, "color") {
		kinds = append(kinds, home.CharBrightness)
	}
	if strings.Contains(t, "color light") {
		kinds = append(kinds, home.CharHue, home.CharSaturation)
	}
	if strings.Contains(t, "temperature") || strings.Contains(t, "extended") {
		kinds = append(kinds, home.CharColorTemperature)
	}
	return kinds
}

// serviceType maps a Hue light type to a service type.
func serviceType(lightType string) home.ServiceType {
	if strings.Contains(strings.ToLower(lightType), "plug") {
		return home.ServiceOutlet
	}
	return home.ServiceLightbulb
}

// stateValue reads kind from a Hue light state in characteristic scale.
func stateValue(s *huego.State, kind home.CharacteristicKind) any {
	switch kind {
	case home.CharPowerState:
		return s.On
	case home.CharBrightness:
		return briToPercent(s.Bri)
	case home.CharHue:
		return hueToDegrees(s.Hue)
	case home.CharSaturation:
		return satToPercent(s.Sat)
	case home.CharColorTemperature:
		return int(s.Ct)
	}
	return nil
}

func briToPercent(bri uint8) int {
	return int(math.Round(float64(bri) * 100 / maxBri))
}

// percentToBri converts 0..100 to 1..254. Hue has no zero brightness;
// off is expressed through power.
func percentToBri(p float64) uint8 {
	return uint8(max(1, math.Round(clamp(p, 0, 100)*maxBri/100)))
}

func hueToDegrees(h uint16) int {
	return int(math.Round(float64(h) * 360 / maxHue))
}

func degreesToHue(d float64) uint16 {
	return uint16(math.Round(clamp(d, 0, 360) * maxHue / 360))
}

func satToPercent(s uint8) int {
	return int(math.Round(float64(s) * 100 / maxSat))
}

func percentToSat(p float64) uint8 {
	return uint8(math.Round(clamp(p, 0, 100) * maxSat / 100))
}

func clampMired(m float64) uint16 {
	return uint16(math.Round(clamp(m, minMired, maxMired)))
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
