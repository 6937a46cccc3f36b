package castbridge

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog"
	"github.com/vishen/go-chromecast/application"
	"github.com/vishen/go-chromecast/cast"
)

const (
	castService       = "_googlecast._tcp"
	defaultCastPort   = 8009
	discoveryTimeout  = 2 * time.Second
	connectionRetries = 5
)

// ChromecastSender drives a Chromecast device through go-chromecast.
// It implements Sender.
type ChromecastSender struct {
	LogOutput io.Writer

	logger      zerolog.Logger
	initLogOnce sync.Once

	mu             sync.Mutex
	deviceAddr     string
	host           string
	port           int
	app            *application.Application
	conn           cast.Conn
	connected      bool
	onSessionState func(connected bool)
}

// NewChromecastSender returns a sender for the given device address
// ("host" or "host:port"). An empty address triggers mDNS discovery
// of the first Chromecast on the local network.
func NewChromecastSender(deviceAddr string) *ChromecastSender {
	return &ChromecastSender{deviceAddr: deviceAddr}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (c *ChromecastSender) Log() *zerolog.Logger {
	if c.LogOutput != nil {
		c.initLogOnce.Do(func() {
			c.logger = zerolog.New(c.LogOutput).With().Timestamp().Logger()
		})
	}
	return &c.logger
}

// Available reports whether a cast device can be located, either via
// the configured address or an mDNS lookup.
func (c *ChromecastSender) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.host != "" {
		return true
	}

	if c.deviceAddr != "" {
		host, port, err := splitDeviceAddr(c.deviceAddr)
		if err != nil {
			c.Log().Error().Str("Method", "Available").Err(err).Msg("bad device address")
			return false
		}
		c.host, c.port = host, port
		return true
	}

	host, port, err := lookupCastDevice()
	if err != nil {
		c.Log().Debug().Str("Method", "Available").Err(err).Msg("no cast device found")
		return false
	}

	c.host, c.port = host, port
	c.Log().Debug().Str("Method", "Available").Str("Host", host).Int("Port", port).Msg("cast device found")
	return true
}

// Initialize connects to the device and launches the receiver app.
func (c *ChromecastSender) Initialize(onSessionState func(connected bool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onSessionState = onSessionState

	conn := cast.NewConnection()
	c.conn = conn
	c.app = application.NewApplication(
		application.WithConnection(conn),
		application.WithConnectionRetries(connectionRetries),
	)

	c.Log().Debug().Str("Method", "Initialize").Str("Host", c.host).Int("Port", c.port).Msg("connecting")
	if err := c.app.Start(c.host, c.port); err != nil {
		return fmt.Errorf("chromecast connect: %w", err)
	}

	c.connected = true
	if c.onSessionState != nil {
		c.onSessionState(true)
	}

	return nil
}

// HasSession reports whether the device connection is live.
func (c *ChromecastSender) HasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LoadMedia loads the media URL on the connected device.
func (c *ChromecastSender) LoadMedia(mediaURL, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.app == nil || !c.connected {
		return fmt.Errorf("chromecast load: no active session")
	}

	c.Log().Debug().Str("Method", "LoadMedia").Str("URL", mediaURL).Str("Title", title).Msg("loading media")
	if err := c.app.Load(mediaURL, 0, "video/mp4", false, false, false); err != nil {
		return fmt.Errorf("chromecast load: %w", err)
	}

	return nil
}

// EndSession stops playback and closes the device connection.
func (c *ChromecastSender) EndSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.app == nil {
		return nil
	}

	c.connected = false
	if c.onSessionState != nil {
		c.onSessionState(false)
	}

	if err := c.app.Close(true); err != nil {
		return fmt.Errorf("chromecast close: %w", err)
	}

	return nil
}

func splitDeviceAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// Bare host, default port.
		return addr, defaultCastPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("splitDeviceAddr port error: %w", err)
	}

	return host, port, nil
}

// Device is one cast responder found on the local network.
type Device struct {
	Name string
	Host string
	Port int
}

// ListDevices runs an mDNS query and returns every Chromecast that
// answered within the discovery window.
func ListDevices() ([]Device, error) {
	entries := make(chan *mdns.ServiceEntry, 8)

	params := mdns.DefaultParams(castService)
	params.Entries = entries
	params.Timeout = discoveryTimeout
	params.DisableIPv6 = true

	go func() {
		defer close(entries)
		_ = mdns.Query(params)
	}()

	var found []Device
	for entry := range entries {
		if entry.AddrV4 == nil {
			continue
		}

		port := entry.Port
		if port == 0 {
			port = defaultCastPort
		}

		found = append(found, Device{
			Name: entry.Name,
			Host: entry.AddrV4.String(),
			Port: port,
		})
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("ListDevices: no %s responders", castService)
	}

	return found, nil
}

// lookupCastDevice returns the first Chromecast on the local network.
func lookupCastDevice() (string, int, error) {
	devices, err := ListDevices()
	if err != nil {
		return "", 0, fmt.Errorf("lookupCastDevice: %w", err)
	}

	return devices[0].Host, devices[0].Port, nil
}
