// Package settings holds the learner's voice and interface preferences as an
// immutable value. Callers replace a Settings value, they never mutate one.
package settings

import (
	"fmt"
	"strings"
)

// Range limits for the synthesis sliders.
const (
	MinSpeed = 0.5
	MaxSpeed = 1.5
	MinPitch = 0.7
	MaxPitch = 1.3
)

// Accents offered to the learner.
var accents = []string{"RP", "Estuary", "Northern", "Welsh", "Cockney"}

var (
	genders     = []string{"any", "male", "female"}
	themes      = []string{"dark", "light", "auto"}
	skillLevels = []string{"beginner", "intermediate", "advanced", "professional"}
)

// Settings is the learner's configuration. Zero Speed or Pitch means "use the
// persona preset".
type Settings struct {
	Accent      string  `json:"accent" yaml:"accent" koanf:"accent"`
	Persona     string  `json:"persona" yaml:"persona" koanf:"persona"`
	Speed       float64 `json:"speed" yaml:"speed" koanf:"speed"`
	Pitch       float64 `json:"pitch" yaml:"pitch" koanf:"pitch"`
	Gender      string  `json:"gender" yaml:"gender" koanf:"gender"`
	VoiceHint   string  `json:"voice_hint" yaml:"voice_hint" koanf:"voice_hint"`
	Theme       string  `json:"theme" yaml:"theme" koanf:"theme"`
	Animations  bool    `json:"animations" yaml:"animations" koanf:"animations"`
	CompactMode bool    `json:"compact_mode" yaml:"compact_mode" koanf:"compact_mode"`
	Autoplay    bool    `json:"autoplay" yaml:"autoplay" koanf:"autoplay"`
	SkillLevel  string  `json:"skill_level" yaml:"skill_level" koanf:"skill_level"`
	DailyGoal   int     `json:"daily_goal" yaml:"daily_goal" koanf:"daily_goal"`
}

// Defaults returns the settings a new learner starts with.
func Defaults() Settings {
	return Settings{
		Accent:     "RP",
		Persona:    "rp_plain",
		Speed:      1.0,
		Pitch:      1.0,
		Gender:     "any",
		Theme:      "dark",
		Animations: true,
		SkillLevel: "intermediate",
		DailyGoal:  10,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	switch {
	case !oneOf(s.Accent, accents):
		return fmt.Errorf("%w: accent %q", ErrInvalidSettings, s.Accent)
	case s.Persona != "" && !knownPersona(s.Persona):
		return fmt.Errorf("%w: persona %q", ErrInvalidSettings, s.Persona)
	case s.Speed != 0 && (s.Speed < MinSpeed || s.Speed > MaxSpeed):
		return fmt.Errorf("%w: speed %.2f outside [%.1f, %.1f]", ErrInvalidSettings, s.Speed, MinSpeed, MaxSpeed)
	case s.Pitch != 0 && (s.Pitch < MinPitch || s.Pitch > MaxPitch):
		return fmt.Errorf("%w: pitch %.2f outside [%.1f, %.1f]", ErrInvalidSettings, s.Pitch, MinPitch, MaxPitch)
	case !oneOf(s.Gender, genders):
		return fmt.Errorf("%w: gender %q", ErrInvalidSettings, s.Gender)
	case !oneOf(s.Theme, themes):
		return fmt.Errorf("%w: theme %q", ErrInvalidSettings, s.Theme)
	case !oneOf(s.SkillLevel, skillLevels):
		return fmt.Errorf("%w: skill level %q", ErrInvalidSettings, s.SkillLevel)
	case s.DailyGoal < 1:
		return fmt.Errorf("%w: daily goal must be at least 1", ErrInvalidSettings)
	}
	return nil
}

// Patch lists fields to change. Nil fields are left alone.
type Patch struct {
	Accent      *string  `json:"accent,omitempty"`
	Persona     *string  `json:"persona,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Pitch       *float64 `json:"pitch,omitempty"`
	Gender      *string  `json:"gender,omitempty"`
	VoiceHint   *string  `json:"voice_hint,omitempty"`
	Theme       *string  `json:"theme,omitempty"`
	Animations  *bool    `json:"animations,omitempty"`
	CompactMode *bool    `json:"compact_mode,omitempty"`
	Autoplay    *bool    `json:"autoplay,omitempty"`
	SkillLevel  *string  `json:"skill_level,omitempty"`
	DailyGoal   *int     `json:"daily_goal,omitempty"`
}

// With returns a copy of s with p applied and validated. s is unchanged.
func (s Settings) With(p Patch) (Settings, error) {
	next := s
	setIf(&next.Accent, p.Accent)
	setIf(&next.Persona, p.Persona)
	setIf(&next.Speed, p.Speed)
	setIf(&next.Pitch, p.Pitch)
	setIf(&next.Gender, p.Gender)
	setIf(&next.VoiceHint, p.VoiceHint)
	setIf(&next.Theme, p.Theme)
	setIf(&next.Animations, p.Animations)
	setIf(&next.CompactMode, p.CompactMode)
	setIf(&next.Autoplay, p.Autoplay)
	setIf(&next.SkillLevel, p.SkillLevel)
	setIf(&next.DailyGoal, p.DailyGoal)
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
