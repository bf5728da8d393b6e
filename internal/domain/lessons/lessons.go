// Package lessons holds the built-in practice scripts.
package lessons

import (
	"fmt"
	"strings"

	"github.com/okian/voicepartner/internal/domain/scoring"
)

// Lesson is a script the learner reads line by line.
type Lesson struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Lines  []Line `json:"lines"`
}

// Line is one line of a lesson. LineID is the key the line board files
// attempts at Text under.
type Line struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
	LineID  string `json:"line_id"`
}

// Line returns the line at index i.
func (l Lesson) Line(i int) (Line, bool) {
	if i < 0 || i >= len(l.Lines) {
		return Line{}, false
	}
	return l.Lines[i], true
}

var earnest = []string{
	"LADY BRACKNELL: To lose one parent may be regarded as a misfortune;",
	"to lose both looks like carelessness.",
	"JACK: I admit with shame that I do not know.",
	"I only wish I were more certain of the fact.",
	"LADY BRACKNELL: I feel bound to tell you that you are not down on my list of eligible young men,",
	"although I have the same list as the dear Duchess of Bolton has.",
	"We work together, in fact.",
	"JACK: Lady Bracknell, I hate to seem inquisitive,",
	"but would you kindly inform me who I am?",
	"LADY BRACKNELL: You are the son of my poor sister, Mrs. Moncrieff,",
	"and consequently Algernon's elder brother.",
	"JACK: Algy's elder brother! Then I have a brother after all.",
	"I knew I had a brother! I always said I had a brother!",
	"ALGERNON: Yes, you have a brother.",
	"And his name is Ernest.",
	"JACK: Ernest! My own brother is named Ernest!",
	"LADY BRACKNELL: The question now arises, what disposition",
	"are we to make of you?",
	"JACK: That is a matter I must leave to you to decide.",
	"LADY BRACKNELL: I think some preliminary inquiry into your past life",
	"would be advisable.",
	"Where did you come from?",
	"JACK: From a handbag.",
	"LADY BRACKNELL: A handbag?",
	"JACK: Yes, Lady Bracknell, I was in a handbag--",
	"a somewhat large, black leather handbag,",
	"with handles to it--an ordinary handbag, in fact.",
}

var catalogue = []Lesson{
	build("earnest", "The Importance of Being Earnest", "Oscar Wilde, Act III", earnest),
}

// All returns every lesson in display order.
func All() []Lesson {
	out := make([]Lesson, len(catalogue))
	for i, l := range catalogue {
		out[i] = clone(l)
	}
	return out
}

// Lookup returns the lesson with id.
func Lookup(id string) (Lesson, error) {
	for _, l := range catalogue {
		if l.ID == id {
			return clone(l), nil
		}
	}
	return Lesson{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func clone(l Lesson) Lesson {
	l.Lines = append([]Line(nil), l.Lines...)
	return l
}

// build splits "SPEAKER: text" prefixes off raw. A line without a prefix
// continues the previous speaker.
func build(id, title, source string, raw []string) Lesson {
	l := Lesson{ID: id, Title: title, Source: source, Lines: make([]Line, 0, len(raw))}
	speaker := ""
	for i, r := range raw {
		text := r
		if who, rest, ok := strings.Cut(r, ": "); ok && isSpeaker(who) {
			speaker, text = who, rest
		}
		l.Lines = append(l.Lines, Line{
			Index:   i,
			Speaker: speaker,
			Text:    text,
			LineID:  scoring.LineKey(text),
		})
	}
	return l
}

// isSpeaker reports whether s reads as a stage name: upper case letters and
// spaces only.
func isSpeaker(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != ' ' && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
