package sh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/xmodem.go/pkg/link"
	"github.com/robotalks/xmodem.go/pkg/term"
)

type nopPort struct {
	closed bool
}

func (p *nopPort) Read([]byte) (int, error)    { return 0, nil }
func (p *nopPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *nopPort) Close() error                { p.closed = true; return nil }

func newTestShell(port *nopPort, opened *[]string) *Shell {
	session := term.NewSession(link.NewConfig(), term.DefaultOptions(), nil)
	session.Config.Device = ""
	session.Opener = func() (link.Port, error) {
		if session.Config.Device == "/dev/missing" {
			return nil, errors.New("no such device")
		}
		*opened = append(*opened, session.Config.Device)
		return port, nil
	}
	return &Shell{Session: session}
}

func TestShellOpenClose(t *testing.T) {
	var opened []string
	port := &nopPort{}
	s := newTestShell(port, &opened)

	require.Error(t, s.Open(""))

	require.NoError(t, s.Open("/dev/ttyS0"))
	require.True(t, s.Session.IsOpen())
	require.NoError(t, s.Open(""))
	require.Equal(t, []string{"/dev/ttyS0"}, opened)

	require.NoError(t, s.Open("/dev/ttyS1"))
	require.True(t, port.closed)
	require.Equal(t, []string{"/dev/ttyS0", "/dev/ttyS1"}, opened)

	require.NoError(t, s.Close())
	require.False(t, s.Session.IsOpen())

	require.Error(t, s.Open("/dev/missing"))
	require.False(t, s.Session.IsOpen())
}

func TestShellSendWithoutDevice(t *testing.T) {
	var opened []string
	s := newTestShell(&nopPort{}, &opened)
	require.Error(t, s.Send("whatever.bin"))
	require.Empty(t, opened)
}
