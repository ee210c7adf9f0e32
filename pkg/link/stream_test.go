package link

import (
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var ignoreGlog = goleak.IgnoreAnyFunction("github.com/golang/glog.(*loggingT).flushDaemon")

func TestStreamReadTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreGlog)
	local, remote := net.Pipe()
	defer remote.Close()
	s := NewStream(local, 10*time.Millisecond)

	buf := make([]byte, 1)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	go remote.Write([]byte{0x15, 0x06})
	for _, expect := range []byte{0x15, 0x06} {
		for n == 0 {
			n, err = s.Read(buf)
			require.NoError(t, err)
		}
		require.Equal(t, expect, buf[0])
		n = 0
	}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Read(buf)
	require.Equal(t, os.ErrClosed, err)
}

func TestStreamWrite(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreGlog)
	local, remote := net.Pipe()
	defer remote.Close()
	s := NewStream(local, 10*time.Millisecond)
	defer s.Close()

	go s.Write([]byte{0x01, 0x02, 0x03})
	buf := make([]byte, 3)
	_, err := io.ReadFull(remote, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, buf)
}

func TestStreamPeerClosed(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreGlog)
	local, remote := net.Pipe()
	s := NewStream(local, 10*time.Millisecond)
	defer s.Close()
	remote.Close()

	buf := make([]byte, 1)
	var err error
	for err == nil {
		_, err = s.Read(buf)
	}
	require.Error(t, err)
	_, err2 := s.Read(buf)
	require.Equal(t, err, err2)
}
