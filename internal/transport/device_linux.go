package transport

import (
	"fmt"

	"github.com/kohnman/lightswarm/internal/serial"
)

// standardBaud maps common line speeds to the kernel's named CBAUD
// constants; anything else falls back to BOTHER custom-speed signalling
// via Termios2.SetCustomSpeed.
var standardBaud = map[int]serial.CFlag{
	1200:    serial.B1200,
	2400:    serial.B2400,
	4800:    serial.B4800,
	9600:    serial.B9600,
	19200:   serial.B19200,
	38400:   serial.B38400,
	57600:   serial.B57600,
	115200:  serial.B115200,
	230400:  serial.B230400,
	460800:  serial.B460800,
	921600:  serial.B921600,
	1000000: serial.B1000000,
}

// SerialDevice is the live hardware Device: a raw, 8-N-1, no-flow-control
// serial port opened via the adapted teacher package.
type SerialDevice struct {
	port *serial.Port
}

// OpenSerialDevice opens name at baud bps, 8-N-1, no flow control — the
// default line parameters of §6.
func OpenSerialDevice(name string, baud int) (*SerialDevice, error) {
	port, err := serial.Open(name, serial.NewOptions())
	if err != nil {
		return nil, fmt.Errorf("transport: opening %s: %w", name, err)
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: reading termios for %s: %w", name, err)
	}
	attrs.MakeRaw()
	attrs.Cflag &^= serial.CSTOPB | serial.CRTSCTS
	attrs.Iflag &^= serial.IXOFF
	if std, ok := standardBaud[baud]; ok {
		attrs.SetSpeed(std)
	} else {
		attrs.SetCustomSpeed(uint32(baud))
	}
	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: configuring %s at %d baud: %w", name, baud, err)
	}
	return &SerialDevice{port: port}, nil
}

func (d *SerialDevice) Write(p []byte) (int, error) { return d.port.Write(p) }
func (d *SerialDevice) Drain() error                { return d.port.Drain() }
func (d *SerialDevice) Close() error                { return d.port.Close() }
