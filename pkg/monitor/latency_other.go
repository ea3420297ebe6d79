//go:build !linux

package monitor

import (
	"errors"
	"net"
	"time"
)

func roundTrip(net.Conn) (time.Duration, error) {
	return 0, errors.New("round trip sampling requires linux")
}
