package lessons_test

import (
	"errors"
	"testing"

	"github.com/okian/voicepartner/internal/domain/lessons"
	"github.com/okian/voicepartner/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalogue(t *testing.T) {
	Convey("Given the built-in lessons", t, func() {
		all := lessons.All()

		Convey("Then the Earnest scene is listed with all of its lines", func() {
			So(all, ShouldHaveLength, 1)
			So(all[0].ID, ShouldEqual, "earnest")
			So(all[0].Lines, ShouldHaveLength, 27)
		})

		Convey("When the scene is looked up", func() {
			l, err := lessons.Lookup("earnest")
			So(err, ShouldBeNil)

			Convey("Then speaker prefixes are split off the text", func() {
				first, ok := l.Line(0)
				So(ok, ShouldBeTrue)
				So(first.Speaker, ShouldEqual, "LADY BRACKNELL")
				So(first.Text, ShouldEqual, "To lose one parent may be regarded as a misfortune;")
			})

			Convey("Then continuation lines keep the previous speaker", func() {
				second, _ := l.Line(1)
				So(second.Speaker, ShouldEqual, "LADY BRACKNELL")
				So(second.Text, ShouldEqual, "to lose both looks like carelessness.")

				reply, _ := l.Line(14)
				So(reply.Speaker, ShouldEqual, "ALGERNON")
				So(reply.Text, ShouldEqual, "And his name is Ernest.")
			})

			Convey("Then line IDs match the keys attempts are filed under", func() {
				for i, line := range l.Lines {
					So(line.Index, ShouldEqual, i)
					So(line.LineID, ShouldEqual, scoring.LineKey(line.Text))
				}
			})

			Convey("Then out of range lines are reported missing", func() {
				_, ok := l.Line(27)
				So(ok, ShouldBeFalse)
				_, ok = l.Line(-1)
				So(ok, ShouldBeFalse)
			})

			Convey("Then changing the copy leaves the catalogue alone", func() {
				l.Lines[0].Text = "changed"
				again, _ := lessons.Lookup("earnest")
				So(again.Lines[0].Text, ShouldNotEqual, "changed")
			})
		})

		Convey("When an unknown lesson is looked up", func() {
			_, err := lessons.Lookup("hamlet")

			Convey("Then it is not found", func() {
				So(errors.Is(err, lessons.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
