// Package mqtt publishes razerctl's watch-mode state to an MQTT broker.
//
// In watch mode the tool behaves like any other device integration on a
// home automation bus: it keeps a retained per-device state topic up to
// date, announces its own liveness with an LWT, emits an event for every
// applied change, and accepts a reconcile command.
//
// This package manages:
//   - Connection with auto-reconnect and exponential backoff
//   - Last Will and Testament for offline detection
//   - Publishing with QoS and payload validation
//   - Subscriptions restored after reconnect
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.PublishJSON(mqtt.DeviceStateTopic(serial), snapshot, true)
//
//	client.Subscribe(mqtt.TopicCommand, 1,
//	    func(topic string, payload []byte) error {
//	        if string(payload) == "reconcile" {
//	            watcher.Trigger()
//	        }
//	        return nil
//	    })
//
// One-shot runs never touch MQTT; the broker connection only exists for
// the lifetime of a watch loop.
package mqtt
