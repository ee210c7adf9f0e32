package link

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/xmodem.go/pkg/link/mqtt"
)

const appID = "xmodem-term"

// MQTTClientID returns the configured MQTT client ID or one derived from the
// machine ID.
func (c *Config) MQTTClientID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return appID
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return appID + "-" + id
}

func openMQTT(c *Config) (Port, error) {
	bridge, err := mqtt.Dial(c.Device, c.MQTTClientID())
	if err != nil {
		return nil, err
	}
	glog.Infof("connected mqtt bridge %s", c.Device)
	return NewStream(bridge, c.ReadTimeout), nil
}
