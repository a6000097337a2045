package executor

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/homecast/internal/command"
	"github.com/nerrad567/homecast/internal/home"
)

// MockBridge is a testify mock of home.Bridge.
type MockBridge struct {
	mock.Mock
}

func (m *MockBridge) WriteCharacteristic(id string, value any) {
	m.Called(id, value)
}

func (m *MockBridge) CharacteristicValue(id string) (any, bool) {
	args := m.Called(id)
	return args.Get(0), args.Bool(1)
}

func (m *MockBridge) ExecuteScene(id string) {
	m.Called(id)
}

// fakeBridge keeps written values so reads observe earlier writes.
type fakeBridge struct {
	mu     sync.Mutex
	values map[string]any
}

func newFakeBridge(initial map[string]any) *fakeBridge {
	if initial == nil {
		initial = map[string]any{}
	}
	return &fakeBridge{values: initial}
}

func (f *fakeBridge) WriteCharacteristic(id string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[id] = value
}

func (f *fakeBridge) CharacteristicValue(id string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[id]
	return v, ok
}

func (f *fakeBridge) ExecuteScene(string) {}

type staticGroups []home.DeviceGroup

func (g staticGroups) Groups() []home.DeviceGroup { return g }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func chars(kv ...string) map[home.CharacteristicKind]string {
	m := make(map[home.CharacteristicKind]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[home.CharacteristicKind(kv[i])] = kv[i+1]
	}
	return m
}

func testSnapshot(t *testing.T) *home.Snapshot {
	t.Helper()

	s := &home.Snapshot{
		Homes: []home.Home{{ID: "h1", Name: "Home", IsPrimary: true}},
		Rooms: []home.Room{{ID: "r-office", Name: "Office"}, {ID: "r-hall", Name: "Hall"}},
		Accessories: []home.Accessory{
			{ID: "a-office", Name: "Office Bridge", RoomID: strPtr("r-office"), IsReachable: true, Services: []home.Service{
				{ID: "s-spot", Name: "Spotlights", Type: home.ServiceLightbulb, Characteristics: chars("power_state", "P")},
				{
					ID: "s-lamp", Name: "Desk Lamp", Type: home.ServiceLightbulb,
					Characteristics: chars("power_state", "LP", "brightness", "LB", "hue", "LH",
						"saturation", "LS", "color_temperature", "LC"),
					ColorTemperatureMin: intPtr(153),
					ColorTemperatureMax: intPtr(500),
				},
				{ID: "s-blind", Name: "Blind", Type: home.ServiceWindowCovering, Characteristics: chars("target_position", "BP")},
			}},
			{ID: "a-hall", Name: "Hall Devices", RoomID: strPtr("r-hall"), IsReachable: true, Services: []home.Service{
				{ID: "s-lock", Name: "Front Door", Type: home.ServiceLock, Characteristics: chars("lock_target_state", "FL")},
				{ID: "s-thermo", Name: "Thermostat", Type: home.ServiceThermostat,
					Characteristics: chars("target_temperature", "TT", "target_heating_cooling_state", "TM")},
				{ID: "s-hc", Name: "Heat Pump", Type: home.ServiceHeaterCooler,
					Characteristics: chars("active", "HA", "target_heater_cooler_state", "HM",
						"cooling_threshold_temperature", "HCT", "heating_threshold_temperature", "HHT")},
				{ID: "s-alarm", Name: "Alarm", Type: home.ServiceSecuritySystem,
					Characteristics: chars("security_system_target_state", "AL")},
			}},
		},
		Scenes: []home.Scene{{ID: "5c-01", Name: "Goodnight"}},
	}
	require.NoError(t, s.Normalize())
	return s
}

func newExecutor(t *testing.T, b home.Bridge) *Executor {
	t.Helper()
	groups := staticGroups{{ID: "g1", Name: "Mixed", Members: []string{"s-spot", "s-lock"}}}
	e := New(b, groups)
	e.SetSnapshot(testSnapshot(t))
	return e
}

func TestExecute_ToggleSpotlights(t *testing.T) {
	b := new(MockBridge)
	b.On("CharacteristicValue", "P").Return(false, true)
	b.On("WriteCharacteristic", "P", true).Once()

	e := newExecutor(t, b)
	r := e.Execute("Office/Spotlights", command.Toggle())

	assert.Equal(t, StatusSuccess, r.Status)
	assert.Equal(t, 1, r.Succeeded)
	b.AssertExpectations(t)
	b.AssertNumberOfCalls(t, "WriteCharacteristic", 1)
}

func TestExecute_BridgeUnavailable(t *testing.T) {
	noBridge := New(nil, nil)
	noBridge.SetSnapshot(testSnapshot(t))
	r := noBridge.Execute("office/spotlights", command.Toggle())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, BridgeUnavailable, r.Err.Kind)

	noSnapshot := New(new(MockBridge), nil)
	r = noSnapshot.Execute("office/spotlights", command.Toggle())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, BridgeUnavailable, r.Err.Kind)

	r = noSnapshot.ExecuteMultiple([]string{"a", "b"}, command.Toggle())
	assert.Equal(t, BridgeUnavailable, r.Err.Kind)
}

func TestExecute_SetBrightnessClamps(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantLevel int
		wantPower bool
	}{
		{"above range", 150, 100, true},
		{"below range", -10, 0, false},
		{"in range", 40, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(MockBridge)
			b.On("WriteCharacteristic", "LB", tt.wantLevel).Once()
			b.On("WriteCharacteristic", "LP", tt.wantPower).Once()

			r := newExecutor(t, b).Execute("office/desk lamp", command.SetBrightness(tt.value))

			assert.Equal(t, StatusSuccess, r.Status)
			b.AssertExpectations(t)
		})
	}
}

func TestExecute_ToggleIsInvolution(t *testing.T) {
	b := newFakeBridge(map[string]any{"P": true})
	e := newExecutor(t, b)

	e.Execute("office/spotlights", command.Toggle())
	v, _ := b.CharacteristicValue("P")
	assert.Equal(t, false, v)

	e.Execute("office/spotlights", command.Toggle())
	v, _ = b.CharacteristicValue("P")
	assert.Equal(t, true, v)
}

func TestExecute_ToggleCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		target string
		char   string
		before any
		want   any
	}{
		{"missing power value reads false", "office/spotlights", "P", nil, true},
		{"lock secured", "hall/front door", "FL", 1, 0},
		{"lock unsecured", "hall/front door", "FL", 0, 1},
		{"blind open", "office/blind", "BP", 80, 0},
		{"blind half", "office/blind", "BP", 50, 100},
		{"thermostat off", "hall/thermostat", "TM", 0, 3},
		{"thermostat heating", "hall/thermostat", "TM", 1, 0},
		{"heater cooler active", "hall/heat pump", "HA", 1, 0},
		{"alarm disarmed", "hall/alarm", "AL", 3, 0},
		{"alarm armed", "hall/alarm", "AL", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := map[string]any{}
			if tt.before != nil {
				initial[tt.char] = tt.before
			}
			b := newFakeBridge(initial)

			r := newExecutor(t, b).Execute(tt.target, command.Toggle())
			require.Equal(t, StatusSuccess, r.Status)

			got, _ := b.CharacteristicValue(tt.char)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_Scene(t *testing.T) {
	b := new(MockBridge)
	b.On("ExecuteScene", "5c-01").Once()

	r := newExecutor(t, b).Execute("scene.GOODNIGHT", command.ExecuteScene())

	assert.Equal(t, StatusSuccess, r.Status)
	b.AssertExpectations(t)
}

func TestExecute_ResolutionErrors(t *testing.T) {
	b := new(MockBridge)
	e := newExecutor(t, b)

	r := e.Execute("Nonexistent/Device", command.Toggle())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, TargetNotFound, r.Err.Kind)
	assert.Equal(t, "Nonexistent/Device", r.Err.Query)

	r = e.Execute("office/l", command.Toggle())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, AmbiguousTarget, r.Err.Kind)
	assert.ElementsMatch(t, []string{"Spotlights", "Desk Lamp", "Blind"}, r.Err.Candidates)
	assert.True(t, errors.Is(r.Err, &ActionError{Kind: AmbiguousTarget}))

	b.AssertNotCalled(t, "WriteCharacteristic", mock.Anything, mock.Anything)
}

func TestExecute_UnsupportedAndPartial(t *testing.T) {
	b := new(MockBridge)
	b.On("WriteCharacteristic", "FL", 1).Once()
	e := newExecutor(t, b)

	r := e.Execute("office/spotlights", command.Lock())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, UnsupportedAction, r.Err.Kind)

	r = e.Execute("group.mixed", command.Lock())
	assert.Equal(t, StatusPartial, r.Status)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	b.AssertExpectations(t)
}

func TestExecute_ColorAndColorTemp(t *testing.T) {
	b := new(MockBridge)
	b.On("WriteCharacteristic", "LH", 360.0).Once()
	b.On("WriteCharacteristic", "LS", 0.0).Once()
	b.On("WriteCharacteristic", "LC", 500).Once()
	b.On("WriteCharacteristic", "LC", 153).Once()
	e := newExecutor(t, b)

	assert.Equal(t, StatusSuccess, e.Execute("office/desk lamp", command.SetColor(400, -5)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("office/desk lamp", command.SetColorTemp(900)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("office/desk lamp", command.SetColorTemp(10)).Status)

	r := e.Execute("office/spotlights", command.SetColor(120, 50))
	assert.Equal(t, UnsupportedAction, r.Err.Kind)
	b.AssertExpectations(t)
}

func TestExecute_Climate(t *testing.T) {
	b := new(MockBridge)
	b.On("WriteCharacteristic", "TT", 21.5).Once()
	b.On("WriteCharacteristic", "HCT", 19.0).Once()
	b.On("WriteCharacteristic", "HHT", 19.0).Once()
	b.On("WriteCharacteristic", "TM", 2).Once()
	b.On("WriteCharacteristic", "HA", 1).Once()
	b.On("WriteCharacteristic", "HM", 1).Once()
	b.On("WriteCharacteristic", "HA", 0).Once()
	e := newExecutor(t, b)

	assert.Equal(t, StatusSuccess, e.Execute("hall/thermostat", command.SetTargetTemp(21.5)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("hall/heat pump", command.SetTargetTemp(19)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("hall/thermostat", command.SetMode(command.ModeCool)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("hall/heat pump", command.SetMode(command.ModeHeat)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("hall/heat pump", command.SetMode(command.ModeOff)).Status)
	b.AssertExpectations(t)
}

func TestExecute_SecurityAndPosition(t *testing.T) {
	b := new(MockBridge)
	b.On("WriteCharacteristic", "AL", 1).Once()
	b.On("WriteCharacteristic", "AL", 3).Once()
	b.On("WriteCharacteristic", "BP", 100).Once()
	e := newExecutor(t, b)

	assert.Equal(t, StatusSuccess, e.Execute("hall/alarm", command.ArmSystem(command.ArmAway)).Status)
	assert.Equal(t, StatusSuccess, e.Execute("hall/alarm", command.Disarm()).Status)
	assert.Equal(t, StatusSuccess, e.Execute("office/blind", command.SetPosition(120)).Status)
	b.AssertExpectations(t)
}

func TestExecute_WriteObserver(t *testing.T) {
	b := new(MockBridge)
	b.On("WriteCharacteristic", mock.Anything, mock.Anything)
	e := newExecutor(t, b)

	var seen []string
	e.SetWriteObserver(func(id string, value any) {
		seen = append(seen, id)
	})

	e.Execute("office/desk lamp", command.SetBrightness(10))
	assert.Equal(t, []string{"LB", "LP"}, seen)
}

func TestExecuteMultiple(t *testing.T) {
	b := newFakeBridge(nil)
	e := newExecutor(t, b)

	r := e.ExecuteMultiple([]string{"office/spotlights", "hall/front door", "nowhere/thing"}, command.Toggle())
	assert.Equal(t, StatusPartial, r.Status)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 1, r.Failed)

	r = e.ExecuteMultiple([]string{"office/spotlights", "hall/front door"}, command.Toggle())
	assert.Equal(t, StatusSuccess, r.Status)

	r = e.ExecuteMultiple([]string{"nowhere/thing", "elsewhere/item"}, command.Toggle())
	require.Equal(t, StatusError, r.Status)
	assert.Equal(t, ExecutionFailed, r.Err.Kind)

	r = e.ExecuteMultiple(nil, command.Toggle())
	assert.Equal(t, ExecutionFailed, r.Err.Kind)
}

func TestExecuteMultiple_CountsTargets(t *testing.T) {
	e := newExecutor(t, newFakeBridge(nil))

	// group.mixed resolves to two services and locks only one of them.
	r := e.ExecuteMultiple([]string{"group.mixed", "hall/front door", "nowhere/thing"}, command.Lock())
	assert.Equal(t, StatusPartial, r.Status)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 2, r.Failed)

	r = e.ExecuteMultiple([]string{"group.mixed", "nowhere/thing"}, command.Lock())
	assert.Equal(t, StatusPartial, r.Status, "a partial target carried out writes")
	assert.Equal(t, 0, r.Succeeded)
	assert.Equal(t, 2, r.Failed)

	r = e.ExecuteMultiple([]string{"scene.goodnight", "group.mixed"}, command.Lock())
	assert.Equal(t, StatusPartial, r.Status)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
}
