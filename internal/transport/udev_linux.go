package transport

import (
	"context"

	"github.com/jochenvg/go-udev"
)

// WatchDeviceNode watches udev for add/remove events on the tty subsystem
// and calls onChange whenever devicePath appears or disappears. Transport
// itself only reconnects on a fixed exponential schedule (§4.4) and has no
// hook for reconnecting early, so this only reports the configured
// com_port device node's presence to onChange.
func WatchDeviceNode(ctx context.Context, devicePath string, onChange func(present bool)) error {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("tty"); err != nil {
		return err
	}

	deviceCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errCh:
				if err != nil {
					return
				}
			case dev, ok := <-deviceCh:
				if !ok {
					return
				}
				if dev.Devnode() != devicePath {
					continue
				}
				switch dev.Action() {
				case "add", "online":
					onChange(true)
				case "remove", "offline":
					onChange(false)
				}
			}
		}
	}()
	return nil
}
