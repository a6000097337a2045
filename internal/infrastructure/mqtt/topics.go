package mqtt

import (
	"strings"
)

// DefaultTopicPrefix is the topic root used when none is configured.
const DefaultTopicPrefix = "homecast"

// Topics builds the hub topic hierarchy under a prefix P:
//
//	P/status                         client online/offline (retained, LWT)
//	P/snapshot                       full snapshot JSON (retained)
//	P/state/<characteristicId>       characteristic value JSON
//	P/reachability/<accessoryId>     "true" or "false"
//	P/set/<characteristicId>         write request, value JSON
//	P/scene/<sceneId>/execute        scene trigger
//
// The zero value uses DefaultTopicPrefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if p := strings.Trim(t.Prefix, "/"); p != "" {
		return p
	}
	return DefaultTopicPrefix
}

// Status returns the client status topic.
//
// Example: homecast/status
func (t Topics) Status() string {
	return t.prefix() + "/status"
}

// Snapshot returns the retained snapshot topic.
//
// Example: homecast/snapshot
func (t Topics) Snapshot() string {
	return t.prefix() + "/snapshot"
}

// State returns the value topic for a characteristic.
//
// Example: homecast/state/3f2a-01
func (t Topics) State(characteristicID string) string {
	return t.prefix() + "/state/" + characteristicID
}

// Reachability returns the reachability topic for an accessory.
//
// Example: homecast/reachability/acc-7
func (t Topics) Reachability(accessoryID string) string {
	return t.prefix() + "/reachability/" + accessoryID
}

// Set returns the write topic for a characteristic.
//
// Example: homecast/set/3f2a-01
func (t Topics) Set(characteristicID string) string {
	return t.prefix() + "/set/" + characteristicID
}

// SceneExecute returns the trigger topic for a scene.
//
// Example: homecast/scene/5c-01/execute
func (t Topics) SceneExecute(sceneID string) string {
	return t.prefix() + "/scene/" + sceneID + "/execute"
}

// AllStates returns a pattern matching every state topic.
//
// Pattern: homecast/state/+
func (t Topics) AllStates() string {
	return t.prefix() + "/state/+"
}

// AllReachability returns a pattern matching every reachability topic.
//
// Pattern: homecast/reachability/+
func (t Topics) AllReachability() string {
	return t.prefix() + "/reachability/+"
}

// ParseState extracts the characteristic id from a state topic.
func (t Topics) ParseState(topic string) (string, bool) {
	return t.leaf(topic, "/state/")
}

// ParseReachability extracts the accessory id from a reachability topic.
func (t Topics) ParseReachability(topic string) (string, bool) {
	return t.leaf(topic, "/reachability/")
}

// leaf returns the single topic level after prefix+category.
func (t Topics) leaf(topic, category string) (string, bool) {
	id, ok := strings.CutPrefix(topic, t.prefix()+category)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
