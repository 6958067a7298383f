// Package mqtt provides MQTT client connectivity for the shade bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The bridge uses MQTT to expose PowerView shades, scenes, and hub
// diagnostics to Home Assistant via its discovery convention. The broker
// decouples the bridge from Home Assistant itself:
//
//	PowerView Hub ↔ Shade Bridge ↔ MQTT Broker ↔ Home Assistant
//
// # Topic Namespace
//
// All bridge topics live under pv2mqtt and carry the hub serial:
//
//	pv2mqtt/shade/{serial}/{shadeID}/state|position|availability|set_position|command
//	pv2mqtt/scene/{serial}/{sceneID}/activate|availability
//	pv2mqtt/hub/{serial}/status|ip|availability
//	pv2mqtt/bridge/status
//
// Use the Topics builder for all topic construction.
//
// # Security Considerations
//
//   - TLS is recommended for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllShadeCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
