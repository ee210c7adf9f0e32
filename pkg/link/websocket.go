package link

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"
)

func openWebsocket(c *Config) (Port, error) {
	conn, err := websocket.Dial(c.Device, "", c.Origin)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.Device)
	}
	conn.PayloadType = websocket.BinaryFrame
	glog.Infof("connected websocket bridge %s", c.Device)
	return NewStream(conn, c.ReadTimeout), nil
}
