package transport

// Observer receives a copy of every frame the Transport emits, carrying the
// original bytes and whether the write went to a simulated or live device.
// The simulator and the audit log are both Observers.
type Observer interface {
	ObserveFrame(frame []byte, simulated bool)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(frame []byte, simulated bool)

func (f ObserverFunc) ObserveFrame(frame []byte, simulated bool) { f(frame, simulated) }
