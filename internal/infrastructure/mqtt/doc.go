// Package mqtt provides the MQTT client used by the hub bridge backend.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and payload size checks
//   - Topic subscriptions restored after reconnect
//   - Last Will and Testament on <prefix>/status for offline detection
//   - The hub topic hierarchy (see Topics)
//
// # Usage
//
//	topics := mqtt.Topics{Prefix: cfg.Bridge.TopicPrefix}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.AllStates(), client.QoS(),
//	    func(topic string, payload []byte) error {
//	        id, _ := topics.ParseState(topic)
//	        ...
//	    })
//
// Broker-backed tests are behind the "integration" build tag and expect a
// broker at 127.0.0.1:1883.
package mqtt
