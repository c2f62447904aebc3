package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mobicost/internal/adapters/artifact"
	service "github.com/okian/mobicost/internal/app"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func shippedService(opts ...service.Option) *service.Service {
	p, err := artifact.LoadPipeline(context.Background(),
		"../../artifacts/classifier.yaml",
		"../../artifacts/scaler.yaml",
	)
	if err != nil {
		panic(err)
	}
	return service.New(p, opts...)
}

func referenceSpec() model.RawSpec {
	return model.RawSpec{
		BatteryPower: 3500, Blue: true, ClockSpeed: 2.5, DualSim: true,
		FC: 16, FourG: true, IntMemory: 128, MobileWt: 180, NCores: 8,
		PC: 48, RAM: 4000, ScH: 15, ScW: 8, TalkTime: 18, ThreeG: true,
		TouchScreen: true, WiFi: true, PxHeight: 1440, PxWidth: 2560,
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with the shipped artifacts", t, func() {
		svc := shippedService(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithMemoSize(500),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should report the artifact kinds", func() {
				So(err, ShouldBeNil)
				r := svc.Ready()
				So(r.Ready, ShouldBeTrue)
				So(r.Classifier, ShouldEqual, "softmax")
				So(r.Scaler, ShouldEqual, "standard")
			})
		})

		Convey("When predicting the reference spec", func() {
			p, err := svc.Predict(ctx, referenceSpec())

			Convey("Then it is Mid-Range with derived features attached", func() {
				So(err, ShouldBeNil)
				So(p.Tier, ShouldEqual, tier.MidRange)
				So(p.Label, ShouldEqual, "Mid-Range")
				So(len(p.Probabilities), ShouldEqual, tier.Count)
				So(p.Confidence, ShouldEqual, p.Probabilities[p.Tier])
				So(p.Derived.PixelDensity, ShouldEqual, 3686400)
				So(p.Derived.ScreenArea, ShouldEqual, 120)
				So(p.Derived.CameraTotal, ShouldEqual, 64)
			})

			Convey("Then repeating it gives the identical answer", func() {
				again, err := svc.Predict(ctx, referenceSpec())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, p)
			})
		})

		Convey("When a flagship spec is predicted", func() {
			s := referenceSpec()
			s.RAM = 12000
			s.BatteryPower = 6500
			p, err := svc.Predict(ctx, s)

			Convey("Then it is Luxury", func() {
				So(err, ShouldBeNil)
				So(p.Label, ShouldEqual, "Luxury")
			})
		})
	})
}

func TestServiceIntegration_BatchMatchesSingle(t *testing.T) {
	Convey("Given a started service with the shipped artifacts", t, func() {
		svc := shippedService(service.WithWorkerCount(4), service.WithMemoSize(0))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When every tier's preset is predicted in one batch", func() {
			specs := make([]model.RawSpec, 0, tier.Count*5)
			for i := range tier.Count * 5 {
				_, s, err := svc.Preset(ctx, fmt.Sprint(i%tier.Count))
				So(err, ShouldBeNil)
				specs = append(specs, s)
			}
			out, err := svc.PredictBatch(ctx, specs)

			Convey("Then each outcome equals the single-spec prediction", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, len(specs))
				for i, o := range out {
					So(o.Err, ShouldBeNil)
					single, err := svc.Predict(ctx, specs[i])
					So(err, ShouldBeNil)
					So(o.Prediction, ShouldResemble, single)
				}
			})
		})
	})
}

func TestServiceIntegration_Concurrency(t *testing.T) {
	Convey("Given a started service shared by many callers", t, func() {
		svc := shippedService(service.WithWorkerCount(4), service.WithMemoSize(16))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When single and batch predictions run concurrently", func() {
			const callers = 8
			var wg sync.WaitGroup
			errs := make(chan error, callers*2)
			for i := range callers {
				wg.Add(2)
				go func() {
					defer wg.Done()
					s := referenceSpec()
					s.RAM = 1000 + i*1000
					if _, err := svc.Predict(ctx, s); err != nil {
						errs <- err
					}
				}()
				go func() {
					defer wg.Done()
					out, err := svc.PredictBatch(ctx, []model.RawSpec{referenceSpec(), referenceSpec()})
					if err != nil {
						errs <- err
						return
					}
					for _, o := range out {
						if o.Err != nil {
							errs <- o.Err
						}
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then none of them fail", func() {
				var failures []error
				for err := range errs {
					failures = append(failures, err)
				}
				So(failures, ShouldBeEmpty)
				stats := svc.GetStats()
				So(stats["batches"], ShouldEqual, int64(callers))
				So(stats["failures"], ShouldEqual, int64(0))
			})
		})
	})
}
