// Package features turns a RawSpec into the position-sensitive vector the
// classifier and scaler were fitted on.
package features

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/okian/mobicost/internal/domain/model"
)

// Width is the arity of a FeatureVector.
const Width = 20

// Positions of every feature inside a Vector.
const (
	BatteryPower = iota
	Blue
	ClockSpeed
	DualSim
	FC
	FourG
	IntMemory
	MobileWt
	NCores
	PC
	RAM
	ScH
	ScW
	TalkTime
	ThreeG
	TouchScreen
	WiFi
	PixelDensity
	ScreenArea
	CameraTotal
)

var names = [Width]string{ //nolint:gochecknoglobals // immutable feature order
	"battery_power", "blue", "clock_speed", "dual_sim", "fc", "four_g",
	"int_memory", "mobile_wt", "n_cores", "pc", "ram", "sc_h", "sc_w",
	"talk_time", "three_g", "touch_screen", "wifi", "pixel_density",
	"screen_area", "camera_total",
}

// numeric lists the positions handed to the scaler, in scaler column order.
var numeric = [...]int{BatteryPower, RAM, PixelDensity, ScreenArea, IntMemory, CameraTotal} //nolint:gochecknoglobals // immutable scaler layout

// NumericWidth is the number of scaled positions.
const NumericWidth = len(numeric)

// Names returns the feature names in vector order.
func Names() []string {
	out := make([]string, Width)
	copy(out, names[:])
	return out
}

// NumericNames returns the scaled feature names in scaler column order.
func NumericNames() []string {
	out := make([]string, NumericWidth)
	for i, pos := range numeric {
		out[i] = names[pos]
	}
	return out
}

// NumericPositions returns the vector positions of the scaled features.
func NumericPositions() []int {
	out := make([]int, NumericWidth)
	copy(out, numeric[:])
	return out
}

// IsNumeric reports whether position pos is scaled.
func IsNumeric(pos int) bool {
	for _, p := range numeric {
		if p == pos {
			return true
		}
	}
	return false
}

// Vector is a FeatureVector (or, after scaling, a ScaledFeatureVector).
type Vector [Width]float64

// maxExact is the largest integer every float64 vector position holds exactly.
const maxExact = 1 << 53

// Derive computes the composite features of s. Operands are assumed to have
// passed CheckDerivable.
func Derive(s model.RawSpec) model.Derived {
	return model.Derived{
		PixelDensity: s.PxWidth * s.PxHeight,
		ScreenArea:   s.ScW * s.ScH,
		CameraTotal:  s.PC + s.FC,
	}
}

// CheckDerivable rejects specs whose composite features would be negative
// or would not be exact integers.
func CheckDerivable(s model.RawSpec) error {
	operands := [...]struct {
		name  string
		value int
	}{
		{"px_height", s.PxHeight}, {"px_width", s.PxWidth},
		{"sc_h", s.ScH}, {"sc_w", s.ScW},
		{"pc", s.PC}, {"fc", s.FC},
	}
	for _, o := range operands {
		if o.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidFeatureVector, o.name, o.value)
		}
	}

	products := [...]struct {
		name string
		a, b int
	}{
		{"pixel_density", s.PxWidth, s.PxHeight},
		{"screen_area", s.ScW, s.ScH},
	}
	for _, p := range products {
		hi, lo := bits.Mul64(uint64(p.a), uint64(p.b))
		if hi != 0 || lo > maxExact {
			return fmt.Errorf("%w: %s overflows", ErrInvalidFeatureVector, p.name)
		}
	}
	if uint64(s.PC)+uint64(s.FC) > maxExact {
		return fmt.Errorf("%w: camera_total overflows", ErrInvalidFeatureVector)
	}
	return nil
}

// Assemble builds the FeatureVector for s in the fixed training order.
func Assemble(s model.RawSpec) (Vector, error) {
	if err := CheckDerivable(s); err != nil {
		return Vector{}, err
	}
	d := Derive(s)
	v := Vector{
		BatteryPower: float64(s.BatteryPower),
		Blue:         boolToFloat(s.Blue),
		ClockSpeed:   s.ClockSpeed,
		DualSim:      boolToFloat(s.DualSim),
		FC:           float64(s.FC),
		FourG:        boolToFloat(s.FourG),
		IntMemory:    float64(s.IntMemory),
		MobileWt:     float64(s.MobileWt),
		NCores:       float64(s.NCores),
		PC:           float64(s.PC),
		RAM:          float64(s.RAM),
		ScH:          float64(s.ScH),
		ScW:          float64(s.ScW),
		TalkTime:     float64(s.TalkTime),
		ThreeG:       boolToFloat(s.ThreeG),
		TouchScreen:  boolToFloat(s.TouchScreen),
		WiFi:         boolToFloat(s.WiFi),
		PixelDensity: float64(d.PixelDensity),
		ScreenArea:   float64(d.ScreenArea),
		CameraTotal:  float64(d.CameraTotal),
	}
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// FromSlice converts an arbitrary slice into a Vector, enforcing arity and
// finiteness.
func FromSlice(values []float64) (Vector, error) {
	if len(values) != Width {
		return Vector{}, fmt.Errorf("%w: got %d values, want %d", ErrInvalidFeatureVector, len(values), Width)
	}
	var v Vector
	copy(v[:], values)
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// Validate rejects NaN and infinite positions.
func (v Vector) Validate() error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidFeatureVector, names[i])
		}
	}
	return nil
}

// Numeric extracts the scaler input in scaler column order.
func (v Vector) Numeric() []float64 {
	out := make([]float64, NumericWidth)
	for i, pos := range numeric {
		out[i] = v[pos]
	}
	return out
}

// WithNumeric returns a copy of v whose scaled positions are replaced by sub.
// Every other position passes through unchanged.
func (v Vector) WithNumeric(sub []float64) (Vector, error) {
	if len(sub) != NumericWidth {
		return Vector{}, fmt.Errorf("%w: got %d scaled values, want %d", ErrInvalidFeatureVector, len(sub), NumericWidth)
	}
	out := v
	for i, pos := range numeric {
		out[pos] = sub[i]
	}
	return out, nil
}

// Slice returns the vector as a fresh slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Width)
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, Width)
	for i, x := range v {
		out[names[i]] = x
	}
	return out
}

// Key renders v as a compact, lossless string suitable as a map key.
func (v Vector) Key() string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
