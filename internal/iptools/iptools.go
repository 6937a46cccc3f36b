// Package iptools picks the local listen address a cast device can
// reach us on when we serve media off the local filesystem.
package iptools

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const basePort = 3500

// DeviceListenAddr finds the local IP on the interface routing to the
// given device address ("host" or "host:port") and pairs it with a
// free TCP port.
func DeviceListenAddr(deviceAddr string) (string, error) {
	host := deviceAddr
	if h, _, err := net.SplitHostPort(deviceAddr); err == nil {
		host = h
	}

	// UDP dial never sends a packet; it only resolves the route.
	conn, err := net.Dial("udp", net.JoinHostPort(host, "8009"))
	if err != nil {
		return "", fmt.Errorf("DeviceListenAddr UDP call error: %w", err)
	}
	defer conn.Close()

	ipToListen, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return "", fmt.Errorf("DeviceListenAddr local addr error: %w", err)
	}

	portToListen, err := checkAndPickPort(ipToListen, basePort)
	if err != nil {
		return "", fmt.Errorf("DeviceListenAddr port error: %w", err)
	}

	return ipToListen + ":" + portToListen, nil
}

func checkAndPickPort(ip string, port int) (string, error) {
	var numberOfchecks int
CHECK:
	numberOfchecks++
	conn, err := net.Listen("tcp", ip+":"+strconv.Itoa(port))
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			if numberOfchecks == 1000 {
				return "", fmt.Errorf("port pick error. Checked 1000 ports: %w", err)
			}
			port++
			goto CHECK
		}
		return "", fmt.Errorf("port pick error: %w", err)
	}
	conn.Close()
	return strconv.Itoa(port), nil
}
