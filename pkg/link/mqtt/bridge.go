// Package mqtt carries a serial byte stream over MQTT.
//
// A gateway attached to the receiver's serial port publishes every byte it
// reads on PREFIX/rx and writes every payload received on PREFIX/tx to the
// port. Bridge is the sender's end of that pair.
package mqtt

import (
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Topic suffixes relative to the prefix in the broker URL.
const (
	TxTopic = "tx"
	RxTopic = "rx"
)

const disconnectQuiesce = 250 // ms

// ClientOptionsFromURL creates ClientOptions and the topic prefix from URL
// in the form mqtt://[user:pass@]host:port/prefix[?client-id=ID].
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	server := "tcp"
	if u.Scheme == "mqtts" {
		server = "ssl"
	}
	server += "://" + u.Host

	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(false).
		SetCleanSession(true).
		SetConnectTimeout(5 * time.Second)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, prefix, nil
}

// Bridge implements io.ReadWriteCloser over the tx/rx topic pair.
// Read blocks until bytes arrive or the Bridge is closed.
type Bridge struct {
	Client  paho.Client
	TxTopic string
	RxTopic string
	QoS     byte

	dataCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	pending   []byte
}

// NewBridge creates a Bridge using topics under prefix. The client is not
// connected or subscribed.
func NewBridge(client paho.Client, prefix string) *Bridge {
	return &Bridge{
		Client:  client,
		TxTopic: prefix + TxTopic,
		RxTopic: prefix + RxTopic,
		QoS:     1,
		dataCh:  make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

// Dial connects to the broker and subscribes the rx topic.
func Dial(brokerURL, clientID string) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid broker URL")
	}
	if opts.ClientID == "" {
		opts.SetClientID(clientID)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("mqtt connection lost: %v", err)
	})
	b := NewBridge(paho.NewClient(opts), prefix)
	if err = wait(b.Client.Connect()); err != nil {
		return nil, errors.Wrapf(err, "connect %s", brokerURL)
	}
	glog.V(2).Infof("SUB %q", b.RxTopic)
	if err = wait(b.Client.Subscribe(b.RxTopic, b.QoS, b.handleMessage)); err != nil {
		b.Client.Disconnect(disconnectQuiesce)
		return nil, errors.Wrapf(err, "subscribe %s", b.RxTopic)
	}
	return b, nil
}

func wait(token paho.Token) error {
	token.Wait()
	return token.Error()
}

func (b *Bridge) handleMessage(_ paho.Client, msg paho.Message) {
	b.Deliver(msg.Payload())
}

// Deliver queues bytes received from the gateway.
func (b *Bridge) Deliver(payload []byte) {
	if len(payload) == 0 {
		return
	}
	data := append([]byte(nil), payload...)
	select {
	case b.dataCh <- data:
	case <-b.closeCh:
	}
}

// Read implements io.Reader.
func (b *Bridge) Read(p []byte) (int, error) {
	if len(b.pending) == 0 {
		select {
		case b.pending = <-b.dataCh:
		case <-b.closeCh:
			return 0, io.EOF
		}
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (b *Bridge) Write(p []byte) (int, error) {
	glog.V(4).Infof("PUB %q %d bytes", b.TxTopic, len(p))
	if err := wait(b.Client.Publish(b.TxTopic, b.QoS, false, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (b *Bridge) Close() (err error) {
	b.closeOnce.Do(func() {
		close(b.closeCh)
		glog.V(2).Infof("UNSUB %q", b.RxTopic)
		err = wait(b.Client.Unsubscribe(b.RxTopic))
		b.Client.Disconnect(disconnectQuiesce)
	})
	return
}
