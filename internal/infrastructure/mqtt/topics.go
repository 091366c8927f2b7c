package mqtt

// razerctl topic hierarchy.
//
//	razerctl/system/status     tool online/offline (retained, LWT)
//	razerctl/state/<serial>    last known settings per device (retained)
//	razerctl/event/change      one message per applied change
//	razerctl/command           inbound commands (watch mode)
const (
	// TopicPrefix is the base for all razerctl topics.
	TopicPrefix = "razerctl"

	// TopicSystemStatus carries the tool's online/offline status.
	TopicSystemStatus = TopicPrefix + "/system/status"

	// TopicChangeEvent carries applied-change events.
	TopicChangeEvent = TopicPrefix + "/event/change"

	// TopicCommand carries inbound commands. Payload "reconcile" triggers
	// an immediate pass in watch mode.
	TopicCommand = TopicPrefix + "/command"

	// CommandReconcile is the command payload that triggers a pass.
	CommandReconcile = "reconcile"
)

// DeviceStateTopic returns the retained state topic for a device serial.
//
// Example: razerctl/state/PM2023H12345678
func DeviceStateTopic(serial string) string {
	return TopicPrefix + "/state/" + serial
}
