package convcontext

import "fmt"

// Every closed-set field is a small integer type whose zero value is the
// documented default, so an uninitialised context is always valid. Text
// encoding uses the lower-case names below.

type TimeOfDay uint8

const (
	TimeOfDayUnknown TimeOfDay = iota
	Morning
	Afternoon
	Evening
	Night
	LateNight
)

var timeOfDayNames = []string{"unknown", "morning", "afternoon", "evening", "night", "late-night"}

func (v TimeOfDay) String() string { return enumName(v, timeOfDayNames) }
func (v TimeOfDay) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *TimeOfDay) UnmarshalText(b []byte) error { return parseEnum(b, timeOfDayNames, v) }

type DayOfWeek uint8

const (
	Weekday DayOfWeek = iota
	Weekend
)

var dayOfWeekNames = []string{"weekday", "weekend"}

func (v DayOfWeek) String() string { return enumName(v, dayOfWeekNames) }
func (v DayOfWeek) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *DayOfWeek) UnmarshalText(b []byte) error { return parseEnum(b, dayOfWeekNames, v) }

type Season uint8

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

var seasonNames = []string{"winter", "spring", "summer", "autumn"}

func (v Season) String() string { return enumName(v, seasonNames) }
func (v Season) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *Season) UnmarshalText(b []byte) error { return parseEnum(b, seasonNames, v) }

type LocationType uint8

const (
	LocationUnknown LocationType = iota
	LocationHome
	LocationWork
	LocationPublic
	LocationTravel
)

var locationTypeNames = []string{"unknown", "home", "work", "public", "travel"}

func (v LocationType) String() string { return enumName(v, locationTypeNames) }
func (v LocationType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *LocationType) UnmarshalText(b []byte) error { return parseEnum(b, locationTypeNames, v) }

type GroupSize uint8

const (
	OneOnOne GroupSize = iota
	SmallGroup
	LargeGroup
)

var groupSizeNames = []string{"one-on-one", "small-group", "large-group"}

func (v GroupSize) String() string { return enumName(v, groupSizeNames) }
func (v GroupSize) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *GroupSize) UnmarshalText(b []byte) error { return parseEnum(b, groupSizeNames, v) }

type SocialSetting uint8

const (
	SettingInformal SocialSetting = iota
	SettingFormal
	SettingProfessional
	SettingPersonal
)

var socialSettingNames = []string{"informal", "formal", "professional", "personal"}

func (v SocialSetting) String() string { return enumName(v, socialSettingNames) }
func (v SocialSetting) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *SocialSetting) UnmarshalText(b []byte) error { return parseEnum(b, socialSettingNames, v) }

type Mood uint8

const (
	MoodNeutral Mood = iota
	MoodHappy
	MoodSad
	MoodAngry
	MoodAnxious
	MoodExcited
)

var moodNames = []string{"neutral", "happy", "sad", "angry", "anxious", "excited"}

func (v Mood) String() string { return enumName(v, moodNames) }
func (v Mood) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *Mood) UnmarshalText(b []byte) error { return parseEnum(b, moodNames, v) }

// ParseMood maps a classifier label to a Mood; unknown labels are neutral.
func ParseMood(label string) Mood {
	var m Mood
	if err := m.UnmarshalText([]byte(label)); err != nil {
		return MoodNeutral
	}
	return m
}

type Tone uint8

const (
	ToneLight Tone = iota
	ToneSerious
	ToneHumorous
	ToneSupportive
	ToneArgumentative
)

var toneNames = []string{"light", "serious", "humorous", "supportive", "argumentative"}

func (v Tone) String() string { return enumName(v, toneNames) }
func (v Tone) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *Tone) UnmarshalText(b []byte) error { return parseEnum(b, toneNames, v) }

func enumName[T ~uint8](v T, names []string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return names[0]
}

func parseEnum[T ~uint8](b []byte, names []string, dst *T) error {
	s := string(b)
	for i, n := range names {
		if n == s {
			*dst = T(i)
			return nil
		}
	}
	return fmt.Errorf("unknown value %q", s)
}
