package link

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Config provides the options to open a link.
type Config struct {
	// Device is a serial port name or a bridge URL.
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`
	DataBits int    `toml:"data_bits"`
	// Parity is one of none, odd, even, mark, space.
	Parity string `toml:"parity"`
	// StopBits is one of 1, 1.5, 2.
	StopBits string `toml:"stop_bits"`
	// ReadTimeout bounds a single read on the link.
	ReadTimeout time.Duration `toml:"read_timeout"`
	// Origin is sent when dialing a websocket bridge.
	Origin string `toml:"origin"`
	// ClientID is the MQTT client ID, derived from the machine ID if empty.
	ClientID string `toml:"client_id"`
}

var defaultConfig = Config{
	BaudRate:    115200,
	DataBits:    8,
	Parity:      "none",
	StopBits:    "1",
	ReadTimeout: 100 * time.Millisecond,
	Origin:      "http://localhost/",
}

func init() {
	if val := os.Getenv("XMODEM_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("XMODEM_BAUDRATE"); val != "" {
		if rate, err := strconv.Atoi(val); err == nil {
			defaultConfig.BaudRate = rate
		}
	}
}

// flag name -> copy the field from src to dst.
var flagFields = map[string]func(dst, src *Config){
	"device":       func(dst, src *Config) { dst.Device = src.Device },
	"baudrate":     func(dst, src *Config) { dst.BaudRate = src.BaudRate },
	"charsize":     func(dst, src *Config) { dst.DataBits = src.DataBits },
	"parity":       func(dst, src *Config) { dst.Parity = src.Parity },
	"stopbits":     func(dst, src *Config) { dst.StopBits = src.StopBits },
	"read-timeout": func(dst, src *Config) { dst.ReadTimeout = src.ReadTimeout },
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial port or bridge URL.")
	flag.IntVar(&defaultConfig.BaudRate, "baudrate", defaultConfig.BaudRate, "The baud rate of the serial port.")
	flag.IntVar(&defaultConfig.DataBits, "charsize", defaultConfig.DataBits, "The number of bits per character.")
	flag.StringVar(&defaultConfig.Parity, "parity", defaultConfig.Parity, "The parity checking mode: none, odd, even, mark, space.")
	flag.StringVar(&defaultConfig.StopBits, "stopbits", defaultConfig.StopBits, "The number of stop bits: 1, 1.5, 2.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Timeout of a single read on the link.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile loads a TOML file into the config. Flags explicitly set on the
// command line keep their values.
func (c *Config) LoadFile(path string) error {
	loaded := *c
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	if flag.Parsed() {
		flag.Visit(func(f *flag.Flag) {
			if copyField, ok := flagFields[f.Name]; ok {
				copyField(&loaded, c)
			}
		})
	}
	*c = loaded
	return nil
}

var parities = map[string]serial.Parity{
	"none":  serial.NoParity,
	"odd":   serial.OddParity,
	"even":  serial.EvenParity,
	"mark":  serial.MarkParity,
	"space": serial.SpaceParity,
}

var stopBits = map[string]serial.StopBits{
	"1":   serial.OneStopBit,
	"1.5": serial.OnePointFiveStopBits,
	"2":   serial.TwoStopBits,
}

// Mode converts the config into serial port settings.
func (c *Config) Mode() (*serial.Mode, error) {
	if c.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return nil, fmt.Errorf("invalid char size: %d", c.DataBits)
	}
	parity, ok := parities[strings.ToLower(c.Parity)]
	if !ok {
		return nil, fmt.Errorf("invalid parity: %q", c.Parity)
	}
	stop, ok := stopBits[c.StopBits]
	if !ok {
		return nil, fmt.Errorf("invalid stop bits: %q", c.StopBits)
	}
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   parity,
		StopBits: stop,
	}, nil
}

// Kind returns the kind of link selected by Device.
func (c *Config) Kind() (Kind, error) {
	if c.Device == "" {
		return KindUnknown, fmt.Errorf("device must be specified")
	}
	if !strings.Contains(c.Device, "://") {
		return KindSerial, nil
	}
	u, err := url.Parse(c.Device)
	if err != nil {
		return KindUnknown, fmt.Errorf("invalid device URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return KindWebsocket, nil
	case "mqtt", "mqtts":
		return KindMQTT, nil
	}
	return KindUnknown, fmt.Errorf("unknown device URL scheme: %q", u.Scheme)
}

// Open opens the link.
func (c *Config) Open() (Port, error) {
	kind, err := c.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindWebsocket:
		return openWebsocket(c)
	case KindMQTT:
		return openMQTT(c)
	default:
		return openSerial(c)
	}
}
