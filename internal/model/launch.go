package model

import (
	"net"
	"strconv"
)

// LaunchTarget is everything the game runtime needs to start straight into the event server
type LaunchTarget struct {
	Identity     Identity
	PlayerUUID   string
	Host         string
	Port         int
	InstancePath string
}

// Endpoint returns the quick-play host:port
func (t LaunchTarget) Endpoint() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}
