package speech_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/internal/domain/settings"
	"github.com/okian/voicepartner/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPractice(t *testing.T) {
	Convey("Given a scripted recognizer and the heuristic scorer", t, func() {
		scorer := scoring.NewHeuristicScorer()
		rec := speech.NewScriptedRecognizer("the car is far", "", "don't")
		ctx := context.Background()

		Convey("When the learner says the line", func() {
			a, err := speech.Practice(ctx, rec, scorer, "The car is far.", "")

			Convey("Then the transcript is scored", func() {
				So(err, ShouldBeNil)
				So(a.Transcript.Text, ShouldEqual, "the car is far")
				So(a.Transcript.Locale, ShouldEqual, "en-GB")
				So(a.Result.Score, ShouldEqual, 80)
				So(speech.Meter(a.Result.Score), ShouldEqual, "80%")
			})

			Convey("When the next transcript is empty", func() {
				a, err := speech.Practice(ctx, rec, scorer, "hello", "en-US")

				Convey("Then it is still scored", func() {
					So(err, ShouldBeNil)
					So(a.Transcript.Locale, ShouldEqual, "en-US")
					So(a.Result.Score, ShouldEqual, 20)
				})
			})
		})

		Convey("When the script runs out", func() {
			for i := 0; i < 3; i++ {
				_, err := speech.Practice(ctx, rec, scorer, "do not", "")
				So(err, ShouldBeNil)
			}
			_, err := speech.Practice(ctx, rec, scorer, "do not", "")

			Convey("Then recognition fails and nothing is scored", func() {
				So(errors.Is(err, speech.ErrRecognitionFailed), ShouldBeTrue)
				So(rec.Remaining(), ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := speech.Practice(cctx, rec, scorer, "hello", "")

			Convey("Then the session is aborted", func() {
				So(errors.Is(err, speech.ErrRecognitionAborted), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(rec.Remaining(), ShouldEqual, 3)
			})
		})

		Convey("When recognition is unavailable", func() {
			_, err := speech.Practice(ctx, speech.UnavailableRecognizer{}, scorer, "hello", "")

			Convey("Then the error is reported", func() {
				So(errors.Is(err, speech.ErrRecognitionUnavailable), ShouldBeTrue)
			})
		})

		Convey("When no recognizer is given", func() {
			_, err := speech.Practice(ctx, nil, scorer, "hello", "")
			So(errors.Is(err, speech.ErrNoRecognizer), ShouldBeTrue)
		})
	})
}

func TestFallbackRecognizer(t *testing.T) {
	Convey("Given an unavailable primary and a scripted fallback", t, func() {
		scripted := speech.NewScriptedRecognizer("hello there")
		rec := speech.NewFallbackRecognizer(speech.UnavailableRecognizer{}, scripted)

		Convey("When recognizing", func() {
			tr, err := rec.Recognize(context.Background(), speech.Request{})

			Convey("Then the fallback answers", func() {
				So(err, ShouldBeNil)
				So(tr.Text, ShouldEqual, "hello there")
			})

			Convey("When the fallback fails for another reason", func() {
				_, err := rec.Recognize(context.Background(), speech.Request{})

				Convey("Then that failure is returned", func() {
					So(errors.Is(err, speech.ErrRecognitionFailed), ShouldBeTrue)
				})
			})
		})
	})

	Convey("Given only unavailable recognizers", t, func() {
		rec := speech.NewFallbackRecognizer(speech.UnavailableRecognizer{}, speech.UnavailableRecognizer{})
		_, err := rec.Recognize(context.Background(), speech.Request{})
		So(errors.Is(err, speech.ErrRecognitionUnavailable), ShouldBeTrue)

		_, err = speech.NewFallbackRecognizer(nil).Recognize(context.Background(), speech.Request{})
		So(errors.Is(err, speech.ErrNoRecognizer), ShouldBeTrue)
	})
}

func TestLogSynthesizer(t *testing.T) {
	Convey("Given a logging synthesizer with two voices", t, func() {
		So(logger.Init(), ShouldBeNil)
		voices := []settings.Voice{{Name: "Alex", Lang: "en-US"}, {Name: "Martha", Lang: "en-GB"}}
		syn := speech.NewLogSynthesizer(logger.Named("speech"), voices...)

		Convey("When the partner line is built from settings and spoken", func() {
			listed, err := syn.Voices(context.Background())
			So(err, ShouldBeNil)
			s := settings.Defaults()
			s.Gender = "female"
			u, ok := s.Utterance("The rain in Spain", listed)
			So(ok, ShouldBeTrue)
			So(syn.Speak(context.Background(), u), ShouldBeNil)

			Convey("Then the utterance is recorded with the British voice", func() {
				spoken := syn.Spoken()
				So(len(spoken), ShouldEqual, 1)
				So(spoken[0].Voice.Name, ShouldEqual, "Martha")
			})
		})

		Convey("When the context is already done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := syn.Speak(ctx, settings.Utterance{Text: "hi"})

			Convey("Then nothing is spoken", func() {
				So(err, ShouldNotBeNil)
				So(syn.Spoken(), ShouldBeEmpty)
			})
		})
	})
}
