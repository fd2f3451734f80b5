package simulator

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/creack/pty"

	"github.com/kohnman/lightswarm/internal/codec"
)

// Harness drives a Simulator from the far end of a pseudo-terminal pair,
// so transport.Transport can be pointed at the master side exactly as it
// would a real /dev/ttyUSB0, while this harness plays the part of the
// hardware: reading whatever bytes arrive, decoding frames, and applying
// them to a Simulator. This is pure Go (no ioctl/termios dependency),
// unlike internal/serial's own loopback helper, which is what makes it
// suitable for a standalone demo/test harness.
type Harness struct {
	Master *os.File
	slave  *os.File
	sim    *Simulator
}

// NewHarness opens a PTY pair and returns a Harness that satisfies
// transport.Device: Write goes to the Master end, Close closes both ends,
// and Drain is a no-op since a PTY has no hardware FIFO to flush.
func NewHarness(sim *Simulator) (*Harness, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &Harness{Master: master, slave: slave, sim: sim}, nil
}

// Drain satisfies transport.Device; a PTY has nothing to flush.
func (h *Harness) Drain() error { return nil }

// Write satisfies transport.Device by writing to the master end, which
// Run below reads back out on the slave end.
func (h *Harness) Write(p []byte) (int, error) { return h.Master.Write(p) }

// Close closes both ends of the PTY.
func (h *Harness) Close() error {
	h.slave.Close()
	return h.Master.Close()
}

// Run reads bytes from the slave end until ctx is cancelled or the pipe
// closes, feeding them through a codec.Decoder and applying every
// complete frame to the Simulator — mirroring exactly what the simulator
// would see as a transport.Observer, but exercised over real file
// descriptors instead of an in-process callback.
func (h *Harness) Run(ctx context.Context) error {
	decoder := codec.NewDecoder()
	reader := bufio.NewReader(h.slave)
	buf := make([]byte, 256)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		h.slave.Close()
		close(done)
	}()

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			for _, frame := range decoder.Feed(buf[:n]) {
				h.sim.ApplyUnstuffed(frame)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
	}
}
