package settings

import (
	"regexp"
	"strings"
)

// SynthesisLang is the language every partner utterance is spoken in.
const SynthesisLang = "en-GB"

// Voice is a synthesis voice reported by the platform.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// VoiceCriteria narrows the voice choice.
type VoiceCriteria struct {
	Lang         string
	Gender       string
	NameIncludes string
}

var (
	maleVoice   = regexp.MustCompile(`(?i)male|daniel|george|brian|google uk english male`)
	femaleVoice = regexp.MustCompile(`(?i)female|martha|serena|amy|emma|english uk|google uk english female`)
)

// PickVoice chooses a voice: voices in the requested language, narrowed by
// name hint and then by gender. It falls back to the first voice in the
// language, then to the first voice overall. ok is false when voices is empty.
func PickVoice(voices []Voice, c VoiceCriteria) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	lang := c.Lang
	if lang == "" {
		lang = SynthesisLang
	}

	var inLang []Voice
	for _, v := range voices {
		if v.Lang != "" && strings.HasPrefix(v.Lang, lang) {
			inLang = append(inLang, v)
		}
	}

	pool := inLang
	if c.NameIncludes != "" {
		hint := strings.ToLower(c.NameIncludes)
		pool = nil
		for _, v := range inLang {
			if strings.Contains(strings.ToLower(v.Name), hint) {
				pool = append(pool, v)
			}
		}
	}

	switch c.Gender {
	case "male":
		pool = filterVoices(pool, maleVoice)
	case "female":
		pool = filterVoices(pool, femaleVoice)
	}

	switch {
	case len(pool) > 0:
		return pool[0], true
	case len(inLang) > 0:
		return inLang[0], true
	default:
		return voices[0], true
	}
}

func filterVoices(in []Voice, re *regexp.Regexp) []Voice {
	var out []Voice
	for _, v := range in {
		if re.MatchString(v.Name) {
			out = append(out, v)
		}
	}
	return out
}

// Utterance is a synthesis request for the voice partner.
type Utterance struct {
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
	Voice *Voice  `json:"voice,omitempty"`
}

// Utterance builds a synthesis request for text using s. Rate and pitch come
// from s when set and from the persona preset otherwise. ok is false for blank
// text, which is never spoken.
func (s Settings) Utterance(text string, voices []Voice) (Utterance, bool) {
	if strings.TrimSpace(text) == "" {
		return Utterance{}, false
	}
	persona := LookupPersona(s.Persona)
	u := Utterance{
		Text:  text,
		Lang:  SynthesisLang,
		Rate:  persona.Rate,
		Pitch: persona.Pitch,
	}
	if s.Speed != 0 {
		u.Rate = s.Speed
	}
	if s.Pitch != 0 {
		u.Pitch = s.Pitch
	}
	if v, ok := PickVoice(voices, VoiceCriteria{Lang: SynthesisLang, Gender: s.Gender, NameIncludes: s.VoiceHint}); ok {
		u.Voice = &v
	}
	return u, true
}
