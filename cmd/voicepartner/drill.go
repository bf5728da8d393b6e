package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/internal/domain/progress"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/pkg/metrics"
)

var errScriptLine = errors.New("invalid script line")

// drillLine is one scripted exchange: what the learner was asked to say and
// what the recognizer heard.
type drillLine struct {
	Target     string
	Transcript string
}

// parseScript reads "target|transcript" lines. Blank lines and lines
// starting with # are skipped.
func parseScript(r io.Reader) ([]drillLine, error) {
	var lines []drillLine
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		target, transcript, ok := strings.Cut(text, "|")
		if !ok || strings.TrimSpace(target) == "" {
			return nil, fmt.Errorf("%w %d: %q", errScriptLine, n, text)
		}
		lines = append(lines, drillLine{Target: strings.TrimSpace(target), Transcript: strings.TrimSpace(transcript)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return lines, nil
}

// runDrill replays a script through the recognizer and scorer and prints a
// score per line followed by the session's progress.
func runDrill(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "script of target|transcript lines (- for stdin)")
	locale := fs.String("locale", speech.DefaultLocale, "recognition locale")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *file == "" {
		fmt.Fprintln(stderr, "drill: -file is required")
		return exitUsage
	}

	var in io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintln(stderr, "drill:", err)
			return exitError
		}
		defer f.Close()
		in = f
	}
	script, err := parseScript(in)
	if err != nil {
		fmt.Fprintln(stderr, "drill:", err)
		return exitError
	}

	transcripts := make([]string, len(script))
	for i, l := range script {
		transcripts[i] = l.Transcript
	}
	snap, err := drill(ctx, script, speech.NewScriptedRecognizer(transcripts...), *locale, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "drill:", err)
		return exitError
	}
	fmt.Fprintf(stdout, "\nattempts %d  xp %d  level %d  best %d%%  average %.1f%%\n",
		snap.Attempts, snap.XP, snap.Level, snap.BestScore, snap.AverageScore)
	return exitOK
}

func drill(ctx context.Context, script []drillLine, rec speech.Recognizer, locale string, out io.Writer) (progress.Snapshot, error) {
	scorer := scoring.NewHeuristicScorer()
	tracker := progress.NewTracker()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTARGET\tHEARD")

	for _, l := range script {
		a, err := speech.Practice(ctx, rec, scorer, l.Target, locale)
		if err != nil {
			metrics.RecordRecognitionFailure(recognitionFailureKind(err))
			if errors.Is(err, speech.ErrRecognitionAborted) {
				_ = tw.Flush()
				return tracker.Snapshot(), err
			}
			fmt.Fprintf(tw, "-\t%s\t(%v)\n", l.Target, err)
			continue
		}
		tracker.Record(model.Outcome{LineID: scoring.LineKey(l.Target), Score: a.Result.Score, TS: time.Now()})
		fmt.Fprintf(tw, "%s\t%s\t%s\n", speech.Meter(a.Result.Score), a.Target, a.Transcript.Text)
	}
	if err := tw.Flush(); err != nil {
		return progress.Snapshot{}, fmt.Errorf("write results: %w", err)
	}
	return tracker.Snapshot(), nil
}

func recognitionFailureKind(err error) string {
	switch {
	case errors.Is(err, speech.ErrRecognitionUnavailable):
		return "unavailable"
	case errors.Is(err, speech.ErrRecognitionAborted):
		return "aborted"
	default:
		return "failed"
	}
}
