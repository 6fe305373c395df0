//nolint:paralleltest // Test file - parallel tests add complexity
package spi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-xbee"
	virt "github.com/ZaparooProject/go-xbee/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

var errBusFault = errors.New("bus fault")

// radioConn is a full-duplex spi.Conn backed by VirtualRadio. Each transfer
// writes w to the radio and clocks back pending radio output, padded with
// idle bytes. When attn is set it tracks whether output is pending.
type radioConn struct {
	radio *virt.VirtualRadio
	attn  *gpiotest.Pin
	err   error
	mu    sync.Mutex
	txs   int
}

func newRadioConn(radio *virt.VirtualRadio) *radioConn {
	return &radioConn{radio: radio}
}

func (c *radioConn) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.txs++
	if c.err != nil {
		return c.err
	}
	if _, err := c.radio.Write(w); err != nil {
		return err //nolint:wrapcheck // Pass-through mock
	}
	n, err := c.radio.Read(r)
	if err != nil {
		return err //nolint:wrapcheck // Pass-through mock
	}
	for i := n; i < len(r); i++ {
		r[i] = idleByte
	}
	c.updateAttention()
	return nil
}

func (c *radioConn) updateAttention() {
	if c.attn == nil {
		return
	}
	if c.radio.HasPendingResponse() {
		c.attn.L = gpio.Low
	} else {
		c.attn.L = gpio.High
	}
}

func (c *radioConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

func (*radioConn) Duplex() conn.Duplex { return conn.Full }

func (*radioConn) String() string { return "mock://spi" }

func (c *radioConn) transfers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txs
}

func (c *radioConn) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

var _ spi.Conn = (*radioConn)(nil)

func newTestTransport(t *testing.T, c *radioConn, opts ...Option) *Transport {
	t.Helper()
	tr := NewFromConn(c, "mock://spi", append([]Option{WithTimeout(200 * time.Millisecond)}, opts...)...)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestSPI_ATCommandRoundTrip(t *testing.T) {
	radio := virt.NewVirtualRadio()
	tr := newTestTransport(t, newRadioConn(radio))

	req, err := xbee.NewATCommandRequest("NI", xbee.WithFrameID(0x05))
	require.NoError(t, err)
	require.NoError(t, tr.Send(context.Background(), req))

	resp, err := tr.ReadResponse(context.Background())
	require.NoError(t, err)

	at, ok := resp.(*xbee.ATCommandResponse)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, byte(0x05), at.FrameID())
	assert.Equal(t, "NI", at.Command())
	assert.Equal(t, []byte("virtual"), at.Value())
}

func TestSPI_Device(t *testing.T) {
	radio := virt.NewVirtualRadio()
	tr := newTestTransport(t, newRadioConn(radio))

	device, err := xbee.New(tr)
	require.NoError(t, err)
	require.NoError(t, device.Init(context.Background()))
	assert.Equal(t, virt.DefaultFirmware, device.Firmware())

	status, err := device.SendData(context.Background(), xbee.Address64Broadcast, []byte{0x7E, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, xbee.DeliverySuccess, status.DeliveryStatus())

	txs := radio.Transmissions()
	require.Len(t, txs, 1)
	assert.Equal(t, []byte{0x7E, 0xFF}, txs[0].Data)
	assert.Equal(t, xbee.Address64Broadcast, txs[0].Dest64)
}

func TestSPI_IdleBytesInsideFrameAreKept(t *testing.T) {
	radio := virt.NewVirtualRadio()
	var diags []xbee.Diagnostic
	tr := newTestTransport(t, newRadioConn(radio), WithDecoderOptions(
		xbee.WithDiagnostics(func(d xbee.Diagnostic) { diags = append(diags, d) }),
	))

	radio.InjectReceive(0x000000000000FFFF, 0xFFFE, []byte{0xFF, 0xFF, 0xFF})

	resp, err := tr.ReadResponse(context.Background())
	require.NoError(t, err)
	rx, ok := resp.(*xbee.ZBRxResponse)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, uint64(0xFFFF), rx.Source64())
	assert.Equal(t, uint16(0xFFFE), rx.Source16())
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, rx.Data())
	assert.Empty(t, diags)
}

func TestSPI_IdlePollingIsSilent(t *testing.T) {
	var diags []xbee.Diagnostic
	tr := newTestTransport(t, newRadioConn(virt.NewVirtualRadio()),
		WithTimeout(20*time.Millisecond),
		WithDecoderOptions(xbee.WithDiagnostics(func(d xbee.Diagnostic) { diags = append(diags, d) })),
	)

	_, err := tr.ReadResponse(context.Background())
	require.ErrorIs(t, err, xbee.ErrTransportTimeout)
	assert.Empty(t, diags)

	trace := xbee.GetTrace(err)
	require.NotNil(t, trace)
	assert.Equal(t, "SPI", trace.Transport)
	assert.Len(t, trace.Trace, 1)
}

func TestSPI_AttentionGatesPolling(t *testing.T) {
	radio := virt.NewVirtualRadio()
	pin := &gpiotest.Pin{N: "SPI_ATTN", L: gpio.High}
	c := newRadioConn(radio)
	c.attn = pin
	tr := newTestTransport(t, c, WithAttention(pin), WithTimeout(20*time.Millisecond))

	radio.InjectModemStatus(0x06)

	_, err := tr.ReadResponse(context.Background())
	require.ErrorIs(t, err, xbee.ErrTransportTimeout)
	assert.Zero(t, c.transfers())

	pin.L = gpio.Low
	resp, err := tr.ReadResponse(context.Background())
	require.NoError(t, err)
	modem, ok := resp.(*xbee.ModemStatusResponse)
	require.True(t, ok)
	assert.Equal(t, xbee.ModemCoordinatorStarted, modem.Status())
	assert.Equal(t, gpio.High, pin.L)
}

func TestSPI_TransferError(t *testing.T) {
	c := newRadioConn(virt.NewVirtualRadio())
	tr := newTestTransport(t, c)
	c.fail(errBusFault)

	req, err := xbee.NewATCommandRequest("VR")
	require.NoError(t, err)
	err = tr.Send(context.Background(), req)
	require.ErrorIs(t, err, errBusFault)
	assert.True(t, xbee.IsRetryable(err))

	_, err = tr.ReadResponse(context.Background())
	require.ErrorIs(t, err, errBusFault)

	var te *xbee.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "ReadResponse", te.Op)
}

func TestSPI_Run(t *testing.T) {
	radio := virt.NewVirtualRadio()
	tr := newTestTransport(t, newRadioConn(radio))

	radio.InjectModemStatus(0x00)
	radio.InjectReceive(virt.DefaultAddress64, 0x0001, []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var ids []xbee.APIID
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, xbee.HandlerFunc(func(r xbee.Response) {
			mu.Lock()
			ids = append(ids, r.APIID())
			if len(ids) == 2 {
				cancel()
			}
			mu.Unlock()
		}))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Equal(t, []xbee.APIID{xbee.APIModemStatusResponse, xbee.APIZBRxResponse}, ids)
}

func TestSPI_Close(t *testing.T) {
	tr := newTestTransport(t, newRadioConn(virt.NewVirtualRadio()))
	assert.True(t, tr.IsConnected())
	assert.Equal(t, xbee.TransportSPI, tr.Type())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.False(t, tr.IsConnected())

	req, err := xbee.NewATCommandRequest("VR")
	require.NoError(t, err)
	require.ErrorIs(t, tr.Send(context.Background(), req), xbee.ErrTransportClosed)
	_, err = tr.ReadResponse(context.Background())
	require.ErrorIs(t, err, xbee.ErrTransportClosed)
}

func TestSPI_SetTimeout(t *testing.T) {
	tr := newTestTransport(t, newRadioConn(virt.NewVirtualRadio()))
	require.ErrorIs(t, tr.SetTimeout(-time.Second), xbee.ErrInvalidArgument)
	require.NoError(t, tr.SetTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, tr.timeout)
}

func TestSPI_SendHonoursContext(t *testing.T) {
	c := newRadioConn(virt.NewVirtualRadio())
	tr := newTestTransport(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := xbee.NewATCommandRequest("VR")
	require.NoError(t, err)
	require.ErrorIs(t, tr.Send(ctx, req), context.Canceled)
	assert.Zero(t, c.transfers())
}
