package inference

import (
	"context"
	"testing"

	"github.com/okian/mobicost/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSoftmax(t *testing.T) {
	Convey("Given malformed coefficients", t, func() {
		_, err := NewSoftmax(make([][]float64, 3), make([]float64, 4))
		So(err, ShouldNotBeNil)

		rows := [][]float64{make([]float64, 20), make([]float64, 20), make([]float64, 19), make([]float64, 20)}
		_, err = NewSoftmax(rows, make([]float64, 4))
		So(err, ShouldNotBeNil)
	})

	Convey("Given all-zero weights", t, func() {
		rows := make([][]float64, 4)
		for i := range rows {
			rows[i] = make([]float64, features.Width)
		}
		m, err := NewSoftmax(rows, []float64{0, 0, 0, 0})
		So(err, ShouldBeNil)

		Convey("Then the distribution is uniform and the first class wins ties", func() {
			idx, p, err := m.PredictWithProba(context.Background(), features.Vector{})
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 0)
			for _, x := range p {
				So(x, ShouldAlmostEqual, 0.25, 1e-12)
			}
		})

		Convey("Then huge logits do not overflow", func() {
			m2, _ := NewSoftmax(rows, []float64{0, 0, 0, 1e6})
			p, err := m2.PredictProba(context.Background(), features.Vector{})
			So(err, ShouldBeNil)
			So(p[3], ShouldAlmostEqual, 1, 1e-12)
			So(CheckProba(p), ShouldBeNil)
		})
	})
}

func TestForest(t *testing.T) {
	Convey("Given a two-tree forest splitting on RAM", t, func() {
		trees := [][]Node{
			{
				{Feature: features.RAM, Threshold: 0, Left: 1, Right: 2},
				{Value: []float64{8, 2, 0, 0}},
				{Value: []float64{0, 0, 1, 3}},
			},
			{
				{Feature: features.RAM, Threshold: 1, Left: 1, Right: 2},
				{Value: []float64{1, 1, 0, 0}},
				{Value: []float64{0, 0, 0, 5}},
			},
		}
		f, err := NewForest(trees)
		So(err, ShouldBeNil)
		So(f.Kind(), ShouldEqual, "forest")
		So(f.Trees(), ShouldEqual, 2)

		Convey("When RAM is below both thresholds", func() {
			var v features.Vector
			v[features.RAM] = -1
			idx, p, _ := f.PredictWithProba(context.Background(), v)
			So(idx, ShouldEqual, 0)
			So(p[0], ShouldAlmostEqual, 0.65, 1e-12)
			So(p[1], ShouldAlmostEqual, 0.35, 1e-12)
		})

		Convey("When RAM sits between the thresholds", func() {
			var v features.Vector
			v[features.RAM] = 0.5
			idx, err := f.Predict(context.Background(), v)
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 3)
			p, _ := f.PredictProba(context.Background(), v)
			So(CheckProba(p), ShouldBeNil)
		})
	})

	Convey("Given malformed trees", t, func() {
		_, err := NewForest(nil)
		So(err, ShouldNotBeNil)

		_, err = NewForest([][]Node{{{Feature: 25, Left: 1, Right: 2}, {Value: []float64{1, 0, 0, 0}}, {Value: []float64{1, 0, 0, 0}}}})
		So(err, ShouldNotBeNil)

		_, err = NewForest([][]Node{{{Feature: 0, Left: 0, Right: 1}, {Value: []float64{1, 0, 0, 0}}}})
		So(err, ShouldNotBeNil)

		_, err = NewForest([][]Node{{{Value: []float64{1, 0, 0}}}})
		So(err, ShouldNotBeNil)

		_, err = NewForest([][]Node{{{Value: []float64{0, 0, 0, 0}}}})
		So(err, ShouldNotBeNil)
	})
}

func TestScalers(t *testing.T) {
	Convey("Given a standard scaler", t, func() {
		s, err := NewStandardScaler([]float64{1, 2, 3, 4, 5, 6}, []float64{1, 2, 3, 4, 5, 6})
		So(err, ShouldBeNil)
		out, err := s.Transform([]float64{2, 4, 6, 8, 10, 12})
		So(err, ShouldBeNil)
		So(out, ShouldResemble, []float64{1, 1, 1, 1, 1, 1})

		_, err = s.Transform([]float64{1})
		So(err, ShouldNotBeNil)
	})

	Convey("Given a min-max scaler", t, func() {
		s, err := NewMinMaxScaler([]float64{0, 0, 0, 0, 0, -1}, []float64{0.5, 1, 1, 1, 1, 2})
		So(err, ShouldBeNil)
		So(s.Kind(), ShouldEqual, "minmax")
		out, _ := s.Transform([]float64{4, 1, 1, 1, 1, 1})
		So(out[0], ShouldEqual, 2)
		So(out[5], ShouldEqual, 1)
	})

	Convey("Given invalid scaler parameters", t, func() {
		_, err := NewStandardScaler([]float64{0, 0, 0, 0, 0, 0}, []float64{1, 1, 0, 1, 1, 1})
		So(err, ShouldNotBeNil)
		_, err = NewStandardScaler([]float64{0}, []float64{1})
		So(err, ShouldNotBeNil)
		_, err = NewMinMaxScaler([]float64{0, 0, 0, 0, 0, 0}, []float64{0, 1, 1, 1, 1, 1})
		So(err, ShouldNotBeNil)
	})
}
