package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the probe command", t, func() {
		convey.Convey("When asked for help", func() {
			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--help"})

			convey.Convey("Then the flags are documented", func() {
				convey.So(cmd.Execute(), convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "--samples")
				convey.So(out.String(), convey.ShouldContainSubstring, "MOBICOST_PROBE_")
			})
		})

		convey.Convey("When the config is invalid", func() {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--samples", "0"})

			convey.Convey("Then it fails before any request", func() {
				err := cmd.Execute()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "samples must be positive")
			})
		})

		convey.Convey("When the url comes from the environment", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()
			_ = os.Setenv("MOBICOST_PROBE_URL", srv.URL)
			defer func() { _ = os.Unsetenv("MOBICOST_PROBE_URL") }()

			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{})

			convey.Convey("Then it probes that service", func() {
				err := cmd.Execute()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "healthz answered 404")
			})
		})
	})
}
