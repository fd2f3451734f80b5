package simulator

import (
	"testing"

	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnSetsAllChannelsFull(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.On(7), false)
	st, ok := sim.Fixture(7)
	require.True(t, ok)
	assert.True(t, st.On)
	assert.Equal(t, 255, st.R)
	assert.Equal(t, 255, st.G)
	assert.Equal(t, 255, st.B)
}

func TestOffZeroesChannels(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.On(7), false)
	sim.ObserveFrame(codec.Off(7), false)
	st, ok := sim.Fixture(7)
	require.True(t, ok)
	assert.False(t, st.On)
	assert.Equal(t, 0, st.R)
}

func TestRGBLevelSetsChannelsAndLevel(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.RGBLevel(3, 10, 20, 30), false)
	st, ok := sim.Fixture(3)
	require.True(t, ok)
	assert.Equal(t, 10, st.R)
	assert.Equal(t, 20, st.G)
	assert.Equal(t, 30, st.B)
	assert.Equal(t, 30, st.Level)
	assert.True(t, st.On)
}

func TestRGBFadeReflectsFinalTargetOnly(t *testing.T) {
	sim := New()
	r := codec.FadeParams{Level: 100, Interval: 5, Step: 2}
	g := codec.FadeParams{Level: 200, Interval: 5, Step: 2}
	b := codec.FadeParams{Level: 50, Interval: 5, Step: 2}
	sim.ObserveFrame(codec.RGBFade(3, r, g, b), false)

	st, ok := sim.Fixture(3)
	require.True(t, ok)
	assert.Equal(t, 100, st.R)
	assert.Equal(t, 200, st.G)
	assert.Equal(t, 50, st.B)
}

func TestBroadcastExpandsToEveryKnownAddress(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.On(1), false)
	sim.ObserveFrame(codec.On(2), false)
	sim.ObserveFrame(codec.Off(codec.Broadcast), false)

	st1, _ := sim.Fixture(1)
	st2, _ := sim.Fixture(2)
	assert.False(t, st1.On)
	assert.False(t, st2.On)
}

func TestFlashLeavesLastSteadyStateAlone(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.RGBLevel(1, 50, 60, 70), false)
	sim.ObserveFrame(codec.Flash(1, 4, 100, 100, 255, 0), false)

	st, ok := sim.Fixture(1)
	require.True(t, ok)
	assert.Equal(t, 50, st.R)
	assert.Equal(t, 60, st.G)
	assert.Equal(t, 70, st.B)
}

func TestResetClearsEverything(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.On(1), false)
	sim.Reset()
	_, ok := sim.Fixture(1)
	assert.False(t, ok)
	assert.Empty(t, sim.All())
}

func TestFilterRestrictsToMatchingAddresses(t *testing.T) {
	sim := New()
	sim.ObserveFrame(codec.On(1), false)
	sim.ObserveFrame(codec.On(2), false)

	only1 := sim.Filter(func(a codec.Address) bool { return a == 1 })
	require.Len(t, only1, 1)
	assert.Equal(t, codec.Address(1), only1[0].Address)
}

func TestUnknownPacketIsIgnored(t *testing.T) {
	sim := New()
	sim.ObserveFrame([]byte{0x01, 0x02}, false) // not a valid framed packet
	assert.Empty(t, sim.All())
}
