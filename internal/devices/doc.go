// Package devices contains Handler implementations driven by the connector.
//
//   - Forwarder turns handler callbacks into Events on a bounded channel
//     consumed by a caller-provided function.
//   - MotionSwitch exposes a switch and a motion binary sensor on one device.
//     While the switch is on, a worker goroutine toggles the motion state at a
//     fixed interval.
//
// Handlers hand work to their goroutines over channels and never block the
// connector beyond the channel send.
package devices
