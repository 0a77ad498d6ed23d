// Package msgs defines the envelope of packets exchanged between a
// controller and its clients, and the generic replies.
//
// Commands flow from clients to the controller, replies and events flow
// back. Every packet is a Typed carrying a registered message.
package msgs
