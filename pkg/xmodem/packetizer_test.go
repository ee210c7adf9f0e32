package xmodem

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func collectPackets(t *testing.T, pz *Packetizer) []*Packet {
	var pkts []*Packet
	for {
		pkt, err := pz.Next()
		if err == io.EOF {
			return pkts
		}
		require.NoError(t, err)
		pkts = append(pkts, pkt)
	}
}

func sequentialBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestPacketizer(t *testing.T) {
	for _, size := range []int{0, 1, 127, 128, 129, 300, 1000} {
		data := sequentialBytes(size)
		pz := NewPacketizer(bytes.NewReader(data))
		pkts := collectPackets(t, pz)

		blocks := (size + BlockSize - 1) / BlockSize
		require.Len(t, pkts, blocks+1, "size %d", size)
		require.Equal(t, blocks, pz.Blocks())
		require.True(t, pz.Done())

		var received []byte
		for i, pkt := range pkts[:blocks] {
			require.Equal(t, DataPacket, pkt.Kind)
			require.Equal(t, BlockNum(i+1), pkt.Block)
			require.NotEmpty(t, pkt.Payload)
			require.True(t, len(pkt.Payload) <= BlockSize)
			received = append(received, pkt.Payload...)
		}
		require.True(t, pkts[blocks].IsTerminal())
		require.Equal(t, data, append([]byte{}, received...))

		_, err := pz.Next()
		require.Equal(t, io.EOF, err)
		_, err = pz.Next()
		require.Equal(t, io.EOF, err)
	}
}

func TestPacketizer300Bytes(t *testing.T) {
	pkts := collectPackets(t, NewPacketizer(bytes.NewReader(make([]byte, 300))))
	require.Len(t, pkts, 4)
	for i, size := range []int{128, 128, 44} {
		require.Equal(t, BlockNum(i+1), pkts[i].Block)
		require.Len(t, pkts[i].Payload, size)
	}
	require.True(t, pkts[3].IsTerminal())
}

func TestPacketizerShortReads(t *testing.T) {
	data := sequentialBytes(300)
	pkts := collectPackets(t, NewPacketizer(iotest.OneByteReader(bytes.NewReader(data))))
	require.Len(t, pkts, 4)
	require.Len(t, pkts[0].Payload, BlockSize)
	require.Len(t, pkts[1].Payload, BlockSize)
	require.Len(t, pkts[2].Payload, 44)
}

func TestPacketizerPadding(t *testing.T) {
	pz := NewPacketizer(bytes.NewReader([]byte{1, 2, 3}))
	pz.PadFinalBlock = true
	pkts := collectPackets(t, pz)
	require.Len(t, pkts, 2)
	require.Len(t, pkts[0].Payload, BlockSize)
	require.Equal(t, []byte{1, 2, 3}, pkts[0].Payload[:3])
	for _, b := range pkts[0].Payload[3:] {
		require.Equal(t, SUB, b)
	}
}

func TestPacketizerBlockWrap(t *testing.T) {
	pkts := collectPackets(t, NewPacketizer(bytes.NewReader(make([]byte, 257*BlockSize))))
	require.Len(t, pkts, 258)
	require.Equal(t, BlockNum(255), pkts[254].Block)
	require.Equal(t, BlockNum(0), pkts[255].Block)
	require.Equal(t, BlockNum(1), pkts[256].Block)
}

func TestPacketizerSourceError(t *testing.T) {
	errBroken := errors.New("broken")
	src := io.MultiReader(bytes.NewReader(make([]byte, BlockSize)), iotest.ErrReader(errBroken))
	pz := NewPacketizer(src)

	pkt, err := pz.Next()
	require.NoError(t, err)
	require.Equal(t, BlockNum(1), pkt.Block)

	_, err = pz.Next()
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, BlockNum(2), srcErr.Block)
	require.True(t, errors.Is(err, errBroken))

	_, err = pz.Next()
	require.Equal(t, io.EOF, err)
}
