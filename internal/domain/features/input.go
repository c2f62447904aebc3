package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/mobicost/internal/domain/model"
)

// Input is the wire form of a RawSpec. Every field is a pointer so an absent
// key can be told apart from a zero value.
type Input struct {
	BatteryPower *int     `json:"battery_power"`
	Blue         *bool    `json:"blue"`
	ClockSpeed   *float64 `json:"clock_speed"`
	DualSim      *bool    `json:"dual_sim"`
	FC           *int     `json:"fc"`
	FourG        *bool    `json:"four_g"`
	IntMemory    *int     `json:"int_memory"`
	MobileWt     *int     `json:"mobile_wt"`
	NCores       *int     `json:"n_cores"`
	PC           *int     `json:"pc"`
	RAM          *int     `json:"ram"`
	ScH          *int     `json:"sc_h"`
	ScW          *int     `json:"sc_w"`
	TalkTime     *int     `json:"talk_time"`
	ThreeG       *bool    `json:"three_g"`
	TouchScreen  *bool    `json:"touch_screen"`
	WiFi         *bool    `json:"wifi"`
	PxHeight     *int     `json:"px_height"`
	PxWidth      *int     `json:"px_width"`
}

// Spec converts the input into a RawSpec. It fails with
// ErrInvalidFeatureVector naming every absent field.
func (in Input) Spec() (model.RawSpec, error) {
	var missing []string
	i := func(name string, p *int) int {
		if p == nil {
			missing = append(missing, name)
			return 0
		}
		return *p
	}
	b := func(name string, p *bool) bool {
		if p == nil {
			missing = append(missing, name)
			return false
		}
		return *p
	}
	f := func(name string, p *float64) float64 {
		if p == nil {
			missing = append(missing, name)
			return 0
		}
		return *p
	}

	s := model.RawSpec{
		BatteryPower: i("battery_power", in.BatteryPower),
		Blue:         b("blue", in.Blue),
		ClockSpeed:   f("clock_speed", in.ClockSpeed),
		DualSim:      b("dual_sim", in.DualSim),
		FC:           i("fc", in.FC),
		FourG:        b("four_g", in.FourG),
		IntMemory:    i("int_memory", in.IntMemory),
		MobileWt:     i("mobile_wt", in.MobileWt),
		NCores:       i("n_cores", in.NCores),
		PC:           i("pc", in.PC),
		RAM:          i("ram", in.RAM),
		ScH:          i("sc_h", in.ScH),
		ScW:          i("sc_w", in.ScW),
		TalkTime:     i("talk_time", in.TalkTime),
		ThreeG:       b("three_g", in.ThreeG),
		TouchScreen:  b("touch_screen", in.TouchScreen),
		WiFi:         b("wifi", in.WiFi),
		PxHeight:     i("px_height", in.PxHeight),
		PxWidth:      i("px_width", in.PxWidth),
	}
	if len(missing) > 0 {
		return model.RawSpec{}, fmt.Errorf("%w: missing %s", ErrInvalidFeatureVector, strings.Join(missing, ", "))
	}
	return s, nil
}

// DecodeInput parses one JSON object into an Input. A value of the wrong JSON
// type is reported as ErrInvalidFeatureVector naming the field; malformed JSON
// is returned unchanged.
func DecodeInput(data []byte) (Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "input"
			}
			return Input{}, fmt.Errorf("%w: %s must be a %s, got %s", ErrInvalidFeatureVector, field, typeErr.Type, typeErr.Value)
		}
		return Input{}, err
	}
	return in, nil
}

// ParseSpec decodes data and converts it into a RawSpec.
func ParseSpec(data []byte) (model.RawSpec, error) {
	in, err := DecodeInput(data)
	if err != nil {
		return model.RawSpec{}, err
	}
	return in.Spec()
}

// InputFromSpec is the inverse of Input.Spec.
func InputFromSpec(s model.RawSpec) Input {
	return Input{
		BatteryPower: &s.BatteryPower,
		Blue:         &s.Blue,
		ClockSpeed:   &s.ClockSpeed,
		DualSim:      &s.DualSim,
		FC:           &s.FC,
		FourG:        &s.FourG,
		IntMemory:    &s.IntMemory,
		MobileWt:     &s.MobileWt,
		NCores:       &s.NCores,
		PC:           &s.PC,
		RAM:          &s.RAM,
		ScH:          &s.ScH,
		ScW:          &s.ScW,
		TalkTime:     &s.TalkTime,
		ThreeG:       &s.ThreeG,
		TouchScreen:  &s.TouchScreen,
		WiFi:         &s.WiFi,
		PxHeight:     &s.PxHeight,
		PxWidth:      &s.PxWidth,
	}
}
