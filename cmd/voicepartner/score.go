package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/scoring"
)

type scoreOutput struct {
	Score     int               `json:"score"`
	Meter     string            `json:"meter"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

// runScore scores one attempt given on the command line.
func runScore(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	target := fs.String("target", "", "phrase the learner was asked to say")
	attempt := fs.String("attempt", "", "recognized transcript")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	res, err := scoring.NewHeuristicScorer().Score(ctx, scoring.Input{Target: *target, Transcript: *attempt})
	if err != nil {
		fmt.Fprintln(stderr, "score:", err)
		return exitError
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scoreOutput{Score: res.Score, Meter: speech.Meter(res.Score), Breakdown: res.Breakdown}); err != nil {
		fmt.Fprintln(stderr, "score:", err)
		return exitError
	}
	return exitOK
}
