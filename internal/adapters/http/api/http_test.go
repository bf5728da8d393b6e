package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/voicepartner/internal/adapters/http/api"
	"github.com/okian/voicepartner/internal/adapters/mq/queue"
	"github.com/okian/voicepartner/internal/adapters/repository"
	service "github.com/okian/voicepartner/internal/app"
	"github.com/okian/voicepartner/internal/domain/lessons"
	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/internal/domain/progress"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/internal/domain/settings"
	"github.com/okian/voicepartner/internal/domain/types"
	"github.com/okian/voicepartner/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps implements api.Dependencies in memory.
type fakeDeps struct {
	mu         sync.Mutex
	seen       map[string]bool
	enqueued   []model.Attempt
	enqueueErr error

	lines     []types.LineEntry
	linesErr  error
	lastOrder string
	lastN     int

	settings settings.Settings
	spoken   []string
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{seen: make(map[string]bool), settings: settings.Defaults()}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, id)
}

func (f *fakeDeps) Size() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.seen))
}

func (f *fakeDeps) Enqueue(_ context.Context, a model.Attempt) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, a)
	return nil
}

func (f *fakeDeps) ScoreNow(ctx context.Context, target, attempt string) (scoring.Result, error) {
	return scoring.NewHeuristicScorer().Score(ctx, scoring.Input{Target: target, Transcript: attempt})
}

func (f *fakeDeps) Lines(_ context.Context, n int, order string) ([]types.LineEntry, error) {
	f.lastN, f.lastOrder = n, order
	if f.linesErr != nil {
		return nil, f.linesErr
	}
	if n > len(f.lines) {
		n = len(f.lines)
	}
	return f.lines[:n], nil
}

func (f *fakeDeps) Line(_ context.Context, lineID string) (types.LineEntry, error) {
	if f.linesErr != nil {
		return types.LineEntry{}, f.linesErr
	}
	for _, l := range f.lines {
		if l.LineID == lineID {
			return l, nil
		}
	}
	return types.LineEntry{}, fmt.Errorf("line %s: %w", lineID, repository.ErrNotFound)
}

func (f *fakeDeps) Progress(context.Context) progress.Snapshot {
	return progress.Snapshot{XP: 120, Level: 1, Streak: 2}
}

func (f *fakeDeps) Settings(context.Context) settings.Settings { return f.settings }

func (f *fakeDeps) UpdateSettings(_ context.Context, p settings.Patch) (settings.Settings, error) {
	next, err := f.settings.With(p)
	if err != nil {
		return settings.Settings{}, err
	}
	f.settings = next
	return next, nil
}

func (f *fakeDeps) ExportSettings(_ context.Context, format string) ([]byte, error) {
	return f.settings.Export(format)
}

func (f *fakeDeps) ImportSettings(_ context.Context, data []byte, format string) (settings.Settings, error) {
	next, err := settings.Import(data, format)
	if err != nil {
		return settings.Settings{}, err
	}
	f.settings = next
	return next, nil
}

func (f *fakeDeps) Speak(_ context.Context, text string) (settings.Utterance, error) {
	f.spoken = append(f.spoken, text)
	u, _ := f.settings.Utterance(text, nil)
	return u, nil
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]any { return map[string]any{"started": true} }

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}, 100).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Health(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux(newFakeDeps())

		Convey("Then /healthz reports ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("Then /stats returns the provider's stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("Then /metrics serves the registry", func() {
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "voicepartner_")
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodPost, "/healthz", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/score", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/settings", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_Score(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux(newFakeDeps())

		Convey("When an attempt is scored", func() {
			w := do(mux, http.MethodPost, "/score", `{"target":"Hello there","attempt":"hello there '"}`)

			Convey("Then the score, meter and breakdown are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["score"], ShouldEqual, float64(85))
				So(body["meter"], ShouldEqual, "85%")
				So(body["breakdown"].(map[string]any)["hits"], ShouldEqual, float64(2))
			})
		})

		Convey("When both strings are empty", func() {
			w := do(mux, http.MethodPost, "/score", `{}`)

			Convey("Then the empty pair still scores", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["score"], ShouldEqual, float64(80))
			})
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/score", `{"target":`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})
	})
}

func TestServer_Attempts(t *testing.T) {
	Convey("Given a registered API", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When a complete attempt is posted", func() {
			body := `{"attempt_id":"a-1","line_id":"tea","target":"Fancy a cup of tea","transcript":"fancy a cup","ts":"2026-10-15T09:00:00Z"}`
			w := do(mux, http.MethodPost, "/attempts", body)

			Convey("Then it is accepted and queued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(decode(w)["status"], ShouldEqual, "accepted")
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].LineID, ShouldEqual, "tea")
				So(deps.enqueued[0].TS.Hour(), ShouldEqual, 9)
			})

			Convey("Then posting it again is reported as a duplicate", func() {
				w := do(mux, http.MethodPost, "/attempts", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["duplicate"], ShouldEqual, true)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When only the target and transcript are posted", func() {
			w := do(mux, http.MethodPost, "/attempts", `{"target":"Mind the gap","transcript":"mind the gap"}`)

			Convey("Then the IDs are generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				body := decode(w)
				So(body["attempt_id"], ShouldNotBeEmpty)
				So(body["line_id"], ShouldEqual, scoring.LineKey("mind the gap"))
			})
		})

		Convey("When the request is invalid", func() {
			Convey("Then a missing target is rejected", func() {
				So(do(mux, http.MethodPost, "/attempts", `{"transcript":"hi"}`).Code, ShouldEqual, http.StatusBadRequest)
			})
			Convey("Then a bad timestamp is rejected", func() {
				So(do(mux, http.MethodPost, "/attempts", `{"target":"hi","ts":"yesterday"}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueErr = fmt.Errorf("wrapped: %w", queue.ErrQueueFull)
			w := do(mux, http.MethodPost, "/attempts", `{"attempt_id":"a-9","target":"hi"}`)

			Convey("Then it reports backpressure and forgets the ID", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(w)["code"], ShouldEqual, "backpressure")
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the service is not running", func() {
			deps.enqueueErr = errors.New("service not started")
			w := do(mux, http.MethodPost, "/attempts", `{"attempt_id":"a-9","target":"hi"}`)

			Convey("Then it is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestServer_Lines(t *testing.T) {
	Convey("Given a line board with entries", t, func() {
		deps := newFakeDeps()
		deps.lines = []types.LineEntry{
			{Rank: 1, LineID: "tea", Score: 90},
			{Rank: 2, LineID: "gap", Score: 60},
		}
		mux := newMux(deps)

		Convey("When lines are listed without parameters", func() {
			w := do(mux, http.MethodGet, "/lines", "")

			Convey("Then the best lines come back with the default limit", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastOrder, ShouldEqual, "best")
				So(deps.lastN, ShouldEqual, 10)
				var entries []types.LineEntry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldResemble, deps.lines)
			})
		})

		Convey("When the weakest lines are requested", func() {
			w := do(mux, http.MethodGet, "/lines?limit=1&order=WORST", "")

			Convey("Then the order is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastOrder, ShouldEqual, "worst")
				So(deps.lastN, ShouldEqual, 1)
			})
		})

		Convey("When the parameters are invalid", func() {
			So(do(mux, http.MethodGet, "/lines?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/lines?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/lines?order=sideways", "").Code, ShouldEqual, http.StatusBadRequest)

			w := do(mux, http.MethodGet, "/lines?limit=101", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When one line is requested", func() {
			Convey("Then a known line is returned", func() {
				w := do(mux, http.MethodGet, "/lines/tea", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["score"], ShouldEqual, float64(90))
			})
			Convey("Then an unknown line is not found", func() {
				w := do(mux, http.MethodGet, "/lines/nope", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["code"], ShouldEqual, "not_found")
			})
			Convey("Then a nested path is a bad request", func() {
				So(do(mux, http.MethodGet, "/lines/a/b", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service has not started yet", func() {
			deps.linesErr = service.ErrNotStarted

			Convey("Then both reads report the service unavailable", func() {
				for _, target := range []string{"/lines", "/lines/tea"} {
					w := do(mux, http.MethodGet, target, "")
					So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
					So(decode(w)["code"], ShouldEqual, "unavailable")
				}
			})
		})

		Convey("When the board fails for another reason", func() {
			deps.linesErr = errors.New("disk on fire")

			Convey("Then it is an internal error", func() {
				w := do(mux, http.MethodGet, "/lines", "")
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}

func TestServer_ProgressAndSpeak(t *testing.T) {
	Convey("Given a registered API", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("Then /progress returns the snapshot", func() {
			w := do(mux, http.MethodGet, "/progress", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["xp"], ShouldEqual, float64(120))
		})

		Convey("Then /speak speaks the line with the persona", func() {
			w := do(mux, http.MethodPost, "/speak", `{"text":"Cheerio"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["lang"], ShouldEqual, settings.SynthesisLang)
			So(deps.spoken, ShouldResemble, []string{"Cheerio"})
		})

		Convey("Then /speak rejects blank text", func() {
			So(do(mux, http.MethodPost, "/speak", `{"text":"  "}`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.spoken, ShouldBeEmpty)
		})

		Convey("Then /personas lists the presets", func() {
			var ps []settings.Persona
			w := do(mux, http.MethodGet, "/personas", "")
			So(json.Unmarshal(w.Body.Bytes(), &ps), ShouldBeNil)
			So(ps, ShouldResemble, settings.Personas())
		})
	})
}

func TestServer_Lessons(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux(newFakeDeps())

		Convey("When the catalogue is listed", func() {
			w := do(mux, http.MethodGet, "/lessons", "")

			Convey("Then every lesson comes back with its line IDs", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ls []lessons.Lesson
				So(json.Unmarshal(w.Body.Bytes(), &ls), ShouldBeNil)
				So(ls, ShouldResemble, lessons.All())
				So(ls[0].Lines[0].LineID, ShouldEqual, scoring.LineKey(ls[0].Lines[0].Text))
			})
		})

		Convey("When one lesson is requested", func() {
			Convey("Then a known lesson is returned", func() {
				w := do(mux, http.MethodGet, "/lessons/earnest", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["title"], ShouldEqual, "The Importance of Being Earnest")
			})
			Convey("Then a single line can be picked", func() {
				w := do(mux, http.MethodGet, "/lessons/earnest?line=22", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["speaker"], ShouldEqual, "JACK")
				So(body["text"], ShouldEqual, "From a handbag.")
				So(body["line_id"], ShouldEqual, scoring.LineKey("From a handbag."))
			})
			Convey("Then unknown lessons and lines are not found", func() {
				So(do(mux, http.MethodGet, "/lessons/hamlet", "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodGet, "/lessons/earnest?line=99", "").Code, ShouldEqual, http.StatusNotFound)
			})
			Convey("Then a malformed request is a bad request", func() {
				So(do(mux, http.MethodGet, "/lessons/earnest?line=x", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/lessons/a/b", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestServer_Settings(t *testing.T) {
	Convey("Given a registered API", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When a partial update is sent", func() {
			w := do(mux, http.MethodPut, "/settings", `{"accent":"Welsh","daily_goal":5}`)

			Convey("Then only those fields change", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.settings.Accent, ShouldEqual, "Welsh")
				So(deps.settings.DailyGoal, ShouldEqual, 5)
				So(deps.settings.Theme, ShouldEqual, settings.Defaults().Theme)
			})
		})

		Convey("When an invalid value is sent", func() {
			w := do(mux, http.MethodPut, "/settings", `{"speed":4}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "invalid_settings")
			})
		})

		Convey("When settings are exported as YAML", func() {
			w := do(mux, http.MethodGet, "/settings/export?format=yml", "")

			Convey("Then a YAML attachment is returned that imports back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/yaml")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "voicepartner-settings.yaml")

				imp := do(mux, http.MethodPost, "/settings/import?format=yaml", w.Body.String())
				So(imp.Code, ShouldEqual, http.StatusOK)
				So(deps.settings, ShouldResemble, settings.Defaults())
			})
		})

		Convey("When an unknown format is requested", func() {
			w := do(mux, http.MethodGet, "/settings/export?format=xml", "")

			Convey("Then it is unsupported", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "unsupported_format")
			})
		})

		Convey("When a malformed document is imported", func() {
			w := do(mux, http.MethodPost, "/settings/import", `{"accent":`)

			Convey("Then it is a bad request and settings are untouched", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.settings, ShouldResemble, settings.Defaults())
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kind and cause are both reachable", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then Wrap keeps nil as nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler that panics", t, func() {
		h := api.MetricsMiddleware(func(http.ResponseWriter, *http.Request) { panic("boom") }, "panicky")
		w := httptest.NewRecorder()

		Convey("When it is called", func() {
			h(w, httptest.NewRequest(http.MethodGet, "/panicky", nil))

			Convey("Then the client gets a JSON 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}
