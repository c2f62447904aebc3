package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/mobicost/internal/adapters/artifact"
	"github.com/okian/mobicost/internal/adapters/http/api"
	service "github.com/okian/mobicost/internal/app"
	"github.com/okian/mobicost/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func liveServer() (*httptest.Server, func()) {
	ctx := context.Background()
	p, err := artifact.LoadPipeline(ctx, "../../artifacts/classifier.yaml", "../../artifacts/scaler.yaml")
	if err != nil {
		panic(err)
	}
	svc := service.New(p, service.WithWorkerCount(2), service.WithPresetSeed(7))
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	srv := httptest.NewServer(api.RequestID(mux))
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func testConfig(url string) *Config {
	return &Config{BaseURL: url, Samples: 2, Workers: 3, Timeout: 5 * time.Second, NoColor: true}
}

func TestVerify(t *testing.T) {
	Convey("Given a well-formed prediction", t, func() {
		p := Prediction{Tier: 2, Label: "Premium", Confidence: 0.7, Probabilities: []float64{0.1, 0.1, 0.7, 0.1}}

		Convey("Then it verifies", func() {
			So(Verify(p), ShouldBeNil)
		})

		Convey("When the label disagrees with the index", func() {
			p.Label = "Luxury"
			So(errors.Is(Verify(p), ErrVerification), ShouldBeTrue)
		})

		Convey("When the index is out of range", func() {
			p.Tier = 4
			So(errors.Is(Verify(p), ErrVerification), ShouldBeTrue)
		})

		Convey("When a probability is missing", func() {
			p.Probabilities = p.Probabilities[:3]
			So(errors.Is(Verify(p), ErrVerification), ShouldBeTrue)
		})

		Convey("When the probabilities do not sum to one", func() {
			p.Probabilities = []float64{0.2, 0.1, 0.7, 0.1}
			So(errors.Is(Verify(p), ErrVerification), ShouldBeTrue)
		})

		Convey("When the confidence is not the tier probability", func() {
			p.Confidence = 0.5
			So(errors.Is(Verify(p), ErrVerification), ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given probe configs", t, func() {
		So(testConfig("http://localhost:9080").Validate(), ShouldBeNil)

		bad := []*Config{
			testConfig("localhost:9080"),
			testConfig("ftp://localhost"),
			{BaseURL: "http://x", Samples: 0, Workers: 1, Timeout: time.Second},
			{BaseURL: "http://x", Samples: 1, Workers: 0, Timeout: time.Second},
			{BaseURL: "http://x", Samples: 1, Workers: 1},
		}
		for _, c := range bad {
			So(errors.Is(c.Validate(), ErrInvalidConfig), ShouldBeTrue)
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a live service", t, func() {
		srv, stop := liveServer()
		defer stop()
		cfg := testConfig(srv.URL)
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "samples.json")
		var out bytes.Buffer

		Convey("When the probe runs", func() {
			report, err := Run(context.Background(), cfg, &out)

			Convey("Then every sample is verified and summarized", func() {
				So(err, ShouldBeNil)
				So(len(report.Samples), ShouldEqual, 8)
				So(report.Passed, ShouldEqual, 8)
				So(report.Failed, ShouldEqual, 0)
				So(out.String(), ShouldContainSubstring, "PASSED")
				So(out.String(), ShouldContainSubstring, "Luxury")
				for _, s := range report.Samples {
					So(s.Prediction.RequestID, ShouldNotBeEmpty)
				}
			})

			Convey("Then the samples are saved as JSON", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var saved Report
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(len(saved.Samples), ShouldEqual, 8)
			})
		})
	})

	Convey("Given a service that answers with a broken distribution", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("GET /v1/presets/{id}", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"label":"x","spec":{"ram":1000}}`))
		})
		mux.HandleFunc("POST /v1/predict", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"tier":0,"label":"Budget","confidence":0.9,"probabilities":[0.9,0.9,0,0]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		var out bytes.Buffer

		report, err := Run(context.Background(), testConfig(srv.URL), &out)

		Convey("Then the run fails verification", func() {
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
			So(report.Failed, ShouldEqual, 8)
			So(out.String(), ShouldContainSubstring, "FAILED")
		})
	})

	Convey("Given a service that is down", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := Run(context.Background(), testConfig(srv.URL), &bytes.Buffer{})

		Convey("Then the health check fails first", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
