package tier

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/mobicost/internal/domain/model"
)

// span is a half-open integer range [lo, hi).
type span struct{ lo, hi int }

func (s span) draw(r *rand.Rand) int { return s.lo + r.Intn(s.hi-s.lo) }

type presetRanges struct {
	battery, ram, memory, pc, fc, cores span
	pxH, pxW, scH, scW, weight, talk    span
	clockLo, clockHi                    float64
}

var presets = [Count]presetRanges{ //nolint:gochecknoglobals // static ranges
	Budget: {
		battery: span{3000, 4500}, ram: span{2000, 4000}, memory: span{32, 128},
		pc: span{8, 16}, fc: span{5, 10}, cores: span{4, 6},
		pxH: span{720, 1080}, pxW: span{1280, 1920}, scH: span{12, 15}, scW: span{6, 8},
		weight: span{180, 220}, talk: span{10, 15}, clockLo: 1.8, clockHi: 2.2,
	},
	MidRange: {
		battery: span{4000, 5000}, ram: span{4000, 6000}, memory: span{128, 256},
		pc: span{12, 20}, fc: span{8, 16}, cores: span{6, 8},
		pxH: span{1080, 1440}, pxW: span{1920, 2560}, scH: span{14, 16}, scW: span{7, 8},
		weight: span{160, 190}, talk: span{15, 20}, clockLo: 2.2, clockHi: 2.6,
	},
	Premium: {
		battery: span{4500, 5500}, ram: span{6000, 8000}, memory: span{256, 512},
		pc: span{20, 40}, fc: span{12, 20}, cores: span{8, 10},
		pxH: span{1440, 1800}, pxW: span{2560, 3200}, scH: span{15, 17}, scW: span{7, 9},
		weight: span{150, 180}, talk: span{18, 24}, clockLo: 2.6, clockHi: 3.0,
	},
	Luxury: {
		battery: span{5000, 7000}, ram: span{8000, 12000}, memory: span{512, 1024},
		pc: span{40, 100}, fc: span{20, 40}, cores: span{10, 16},
		pxH: span{1800, 2400}, pxW: span{3200, 3840}, scH: span{16, 19}, scW: span{8, 10},
		weight: span{180, 250}, talk: span{20, 30}, clockLo: 3.0, clockHi: 3.5,
	},
}

// Generator draws realistic quick-start specs for a tier. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with seed; 0 seeds from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))} //nolint:gosec // presets are not security sensitive
}

// Preset returns a generated spec for tier index i.
func (g *Generator) Preset(i int) (model.RawSpec, error) {
	if _, err := Get(i); err != nil {
		return model.RawSpec{}, err
	}
	p := presets[i]

	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.rnd
	clock := p.clockLo + r.Float64()*(p.clockHi-p.clockLo)
	return model.RawSpec{
		BatteryPower: p.battery.draw(r),
		RAM:          p.ram.draw(r),
		IntMemory:    p.memory.draw(r),
		PC:           p.pc.draw(r),
		FC:           p.fc.draw(r),
		ClockSpeed:   math.Round(clock*10) / 10,
		NCores:       p.cores.draw(r),
		PxHeight:     p.pxH.draw(r),
		PxWidth:      p.pxW.draw(r),
		ScH:          p.scH.draw(r),
		ScW:          p.scW.draw(r),
		MobileWt:     p.weight.draw(r),
		TalkTime:     p.talk.draw(r),
		Blue:         true,
		DualSim:      true,
		FourG:        true,
		ThreeG:       true,
		TouchScreen:  true,
		WiFi:         true,
	}, nil
}
