package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get and Named return loggers", func() {
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When an unknown format is requested", func() {
			err := Init(WithFormat("xml"))

			Convey("Then initialization fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		l, err := New(WithFormat("json"), WithOutput(&buf))
		So(err, ShouldBeNil)

		Convey("When a record is logged with typed fields", func() {
			l.Named("worker").Info(context.Background(), "attempt scored",
				String("attempt_id", "a-1"),
				Int("score", 85),
				Bool("duplicate", false),
				Error(errors.New("boom")),
			)

			Convey("Then the fields are grouped under the name", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "attempt scored")
				group, ok := rec["worker"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["attempt_id"], ShouldEqual, "a-1")
				So(group["score"], ShouldEqual, float64(85))
				So(group["duplicate"], ShouldEqual, false)
				So(group["source"], ShouldContainSubstring, "logger_test.go:")
			})
		})
	})
}

func TestLevels(t *testing.T) {
	Convey("Given a text logger at warn level", t, func() {
		var buf bytes.Buffer
		lv := new(slog.LevelVar)
		lv.Set(slog.LevelWarn)
		l, err := New(WithOutput(&buf), WithLevelVar(lv))
		So(err, ShouldBeNil)

		Convey("When logging below and at the level", func() {
			l.Debug(context.Background(), "hidden")
			l.Info(context.Background(), "hidden")
			l.Warn(context.Background(), "shown")

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(strings.Count(out, "\n"), ShouldEqual, 1)
				So(out, ShouldContainSubstring, "msg=shown")
			})
		})
	})

	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)
		for _, name := range []string{"debug", "INFO", "", "warning", "error"} {
			So(SetLevelString(name), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
