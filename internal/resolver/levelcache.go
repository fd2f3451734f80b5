package resolver

import (
	"sync"

	"github.com/kohnman/lightswarm/internal/codec"
)

// levelCache supplies the fade start level the resolver plans from. The
// documented default behaviour assumes every fade starts at 0; WithLevelCache
// swaps in a real per-fixture memory of the last level this resolver set.
type levelCache interface {
	get(addr codec.Address) int
	set(addr codec.Address, level int)
	getRGB(addr codec.Address) (r, g, b int)
	setRGB(addr codec.Address, r, g, b int)
}

// noLevelCache always reports a start level of 0, regardless of history.
type noLevelCache struct{}

func (noLevelCache) get(codec.Address) int                    { return 0 }
func (noLevelCache) set(codec.Address, int)                   {}
func (noLevelCache) getRGB(codec.Address) (r, g, b int)        { return 0, 0, 0 }
func (noLevelCache) setRGB(codec.Address, int, int, int) {}

type rgbEntry struct{ r, g, b int }

// memLevelCache remembers the last level/RGB this resolver instance set
// per address. It does not observe frames sent by any other producer
// (animation engine, session controller), so it is still only a best
// effort, not a faithful mirror of device state.
type memLevelCache struct {
	mu    sync.Mutex
	level map[codec.Address]int
	rgb   map[codec.Address]rgbEntry
}

func newMemLevelCache() *memLevelCache {
	return &memLevelCache{
		level: make(map[codec.Address]int),
		rgb:   make(map[codec.Address]rgbEntry),
	}
}

func (c *memLevelCache) get(addr codec.Address) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level[addr]
}

func (c *memLevelCache) set(addr codec.Address, level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level[addr] = level
}

func (c *memLevelCache) getRGB(addr codec.Address) (r, g, b int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.rgb[addr]
	return e.r, e.g, e.b
}

func (c *memLevelCache) setRGB(addr codec.Address, r, g, b int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rgb[addr] = rgbEntry{r, g, b}
}
