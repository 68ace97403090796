package calibration_test

import (
	"os"
	"testing"

	"github.com/okian/crux/internal/domain/calibration"
	. "github.com/smartystreets/goconvey/convey"
)

func writeTempTable(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "calibration-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()
	t.Cleanup(func() { _ = os.Remove(f.Name()) })
	return f.Name()
}

func TestLoadFile(t *testing.T) {
	Convey("Given a complete calibration file", t, func() {
		path := writeTempTable(t, `
version: v2
calibrated_at: 2026-08-01T00:00:00Z
components:
  leverage: {mean: 1.3, stddev: 0.75}
  pressure: {mean: 50, stddev: 10}
  fatigue: {mean: 47, stddev: 8}
  execution: {mean: 49, stddev: 9}
  bio: {mean: 48, stddev: 9}
`)

		Convey("When loading it", func() {
			table, err := calibration.LoadFile(path)

			Convey("Then the table carries the file's parameters", func() {
				So(err, ShouldBeNil)
				So(table.Version(), ShouldEqual, "v2")
				e, ok := table.Entry("leverage")
				So(ok, ShouldBeTrue)
				So(e.Mean, ShouldEqual, 1.3)
				So(e.Stddev, ShouldEqual, 0.75)
			})
		})
	})

	Convey("Given a file missing a component", t, func() {
		path := writeTempTable(t, `
version: v2
components:
  leverage: {mean: 1.3, stddev: 0.75}
  pressure: {mean: 50, stddev: 10}
`)

		Convey("When loading it", func() {
			_, err := calibration.LoadFile(path)

			Convey("Then loading fails closed", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a file without a version", t, func() {
		path := writeTempTable(t, `
components:
  leverage: {mean: 1.3, stddev: 0.75}
`)

		Convey("When loading it", func() {
			_, err := calibration.LoadFile(path)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a path that does not exist", t, func() {
		Convey("When loading it", func() {
			_, err := calibration.LoadFile("/nonexistent/table.yaml")

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
