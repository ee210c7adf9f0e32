package xmodem

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockNum(t *testing.T) {
	for n := 0; n < 255; n++ {
		require.Equal(t, BlockNum(n+1), BlockNum(n).Next())
		require.Equal(t, byte(255-n), BlockNum(n).Complement())
	}
	require.Equal(t, BlockNum(0), BlockNum(255).Next())
	require.Equal(t, byte(0), BlockNum(255).Complement())
}

func TestPacket(t *testing.T) {
	testCases := []struct {
		name   string
		packet *Packet
		expect []byte
	}{
		{"terminal", NewTerminalPacket(), []byte{EOT}},
		{"single byte", NewDataPacket(1, []byte{0x41}), []byte{SOH, 1, 254, 0x41, 0x41}},
		{"checksum wraps", NewDataPacket(2, []byte{0xff, 0x02}), []byte{SOH, 2, 253, 0xff, 0x02, 0x01}},
		{"block zero", NewDataPacket(0, []byte{1, 2, 3}), []byte{SOH, 0, 255, 1, 2, 3, 6}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.packet.Bytes())
			require.Equal(t, len(tc.expect), tc.packet.Len())
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.EqualValues(t, len(tc.expect), n)
		})
	}
}

func TestPacketRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for size := 1; size <= BlockSize; size++ {
		payload := make([]byte, size)
		rnd.Read(payload)
		block := BlockNum(rnd.Intn(256))
		encoded := NewDataPacket(block, payload).Bytes()
		require.Equal(t, Checksum(payload), encoded[len(encoded)-1])

		pkt, err := ParsePacket(encoded)
		require.NoError(t, err)
		require.Equal(t, DataPacket, pkt.Kind)
		require.Equal(t, block, pkt.Block)
		require.Equal(t, payload, pkt.Payload)
	}

	pkt, err := ParsePacket(NewTerminalPacket().Bytes())
	require.NoError(t, err)
	require.True(t, pkt.IsTerminal())
}

func TestParsePacketErrors(t *testing.T) {
	testCases := []struct {
		name  string
		frame []byte
		err   error
	}{
		{"empty", nil, ErrShortFrame},
		{"bad header", []byte{0x02, 1, 254, 1, 1}, ErrBadHeader},
		{"no payload", []byte{SOH, 1, 254, 0}, ErrShortFrame},
		{"eot with data", []byte{EOT, 1}, ErrFrameTooLong},
		{"complement", []byte{SOH, 1, 1, 1, 1}, ErrBadComplement},
		{"checksum", []byte{SOH, 1, 254, 1, 2}, ErrBadChecksum},
		{"too long", append([]byte{SOH, 1, 254}, make([]byte, BlockSize+2)...), ErrFrameTooLong},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePacket(tc.frame)
			require.Equal(t, tc.err, err)
		})
	}
}

func TestPacketString(t *testing.T) {
	require.Equal(t, "EOT", NewTerminalPacket().String())
	require.Equal(t, "block 3 (44 bytes)", NewDataPacket(3, make([]byte, 44)).String())
	require.Equal(t, "data", DataPacket.String())
	require.Equal(t, "eot", TerminalPacket.String())
}
