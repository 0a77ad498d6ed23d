// Package env sets up controllers and clients from flags and environment.
package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID returns an ID derived from the machine ID, keyed by app so it
// doesn't leak the raw machine ID. It is empty if the machine ID is unknown.
func MachineID(app string) string {
	id, err := machineid.ProtectedID(app)
	if err != nil {
		glog.Warningf("machine ID unavailable: %v", err)
		return ""
	}
	return id[:16]
}
