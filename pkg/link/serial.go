package link

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

func openSerial(c *Config) (Port, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(c.Device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open device %s", c.Device)
	}
	if err = port.SetReadTimeout(c.ReadTimeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "configure device %s", c.Device)
	}
	glog.Infof("opened serial port %s at %d baud", c.Device, c.BaudRate)
	return port, nil
}
