package serial

import (
	"testing"
	"time"
)

// TestOpenPTYLoopback exercises the package's own pseudo-terminal helper
// as a hardware-free sanity check: anything written to the master side
// must be readable on the slave side unchanged. This is what backs the
// transport package's confidence that SerialDevice's writes
// reach a real file descriptor correctly, without needing actual
// hardware attached to run the suite.
func TestOpenPTYLoopback(t *testing.T) {
	master, slave, err := OpenPTY(nil, nil)
	if err != nil {
		t.Fatalf("OpenPTY: %v", err)
	}
	defer master.Close()
	defer slave.Close()

	payload := []byte("lightswarm-loopback")
	slave.SetReadTimeout(2 * time.Second)

	n, err := master.Write(payload)
	if err != nil {
		t.Fatalf("master.Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("wrote %d bytes, want %d", n, len(payload))
	}

	buf := make([]byte, len(payload))
	read := 0
	for read < len(payload) {
		n, err := slave.Read(buf[read:])
		if err != nil {
			t.Fatalf("slave.Read: %v", err)
		}
		read += n
	}
	if string(buf) != string(payload) {
		t.Fatalf("read %q, want %q", buf, payload)
	}
}

// TestOpenPTYMakeRaw exercises MakeRaw on the slave's attributes without
// driving any external process, confirming the adapted teacher code's
// termios plumbing (GetAttr/SetAttr/MakeRaw) round-trips on this kernel.
func TestOpenPTYMakeRaw(t *testing.T) {
	master, slave, err := OpenPTY(nil, nil)
	if err != nil {
		t.Fatalf("OpenPTY: %v", err)
	}
	defer master.Close()
	defer slave.Close()

	attrs, err := slave.GetAttr()
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	attrs.MakeRaw()
	if err := slave.SetAttr(TCSANOW, attrs); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
}
