package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/mobicost/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRawSpecWireNames(t *testing.T) {
	convey.Convey("Given a RawSpec", t, func() {
		spec := model.RawSpec{BatteryPower: 3500, Blue: true, ClockSpeed: 2.5, PxHeight: 1440, PxWidth: 2560}

		convey.Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(spec)
			convey.So(err, convey.ShouldBeNil)

			var fields map[string]any
			convey.So(json.Unmarshal(raw, &fields), convey.ShouldBeNil)

			convey.Convey("Then every training column name should be present", func() {
				for _, name := range []string{
					"battery_power", "blue", "clock_speed", "dual_sim", "fc", "four_g",
					"int_memory", "mobile_wt", "n_cores", "pc", "ram", "sc_h", "sc_w",
					"talk_time", "three_g", "touch_screen", "wifi", "px_height", "px_width",
				} {
					convey.So(fields, convey.ShouldContainKey, name)
				}
				convey.So(fields, convey.ShouldHaveLength, 19)
				convey.So(fields["blue"], convey.ShouldEqual, true)
				convey.So(fields["clock_speed"], convey.ShouldEqual, 2.5)
			})
		})
	})
}
