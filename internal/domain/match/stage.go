package match

import (
	"regexp"
	"strconv"
	"strings"
)

// Stage is a tournament phase. The zero value means unknown.
type Stage string

const (
	StageNone       Stage = ""
	StageGroup      Stage = "GROUP"
	StageRound32    Stage = "R32"
	StageRound16    Stage = "R16"
	StageQuarter    Stage = "QF"
	StageSemi       Stage = "SF"
	StageThirdPlace Stage = "3P"
	StageFinal      Stage = "FINAL"
)

var (
	groupPattern    = regexp.MustCompile(`(?i)group\s*([a-z])`)
	matchdayPattern = regexp.MustCompile(`(?i)(?:matchday|round)\s*(\d+)`)
	digitsPattern   = regexp.MustCompile(`\d+`)
)

// InferStageFromRound reads numeric round codes; unknown codes yield StageNone.
func InferStageFromRound(round int) Stage {
	switch round {
	case 1, 2, 3:
		return StageGroup
	case 32:
		return StageRound32
	case 16:
		return StageRound16
	case 8, 125:
		return StageQuarter
	case 4, 150:
		return StageSemi
	case 160:
		return StageThirdPlace
	case 200:
		return StageFinal
	default:
		return StageNone
	}
}

// InferStageFromText matches free-text round descriptions. Order matters:
// "semi final" and "third place final" must not resolve to FINAL.
func InferStageFromText(text string) Stage {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "round of 32"), strings.Contains(t, "last 32"):
		return StageRound32
	case strings.Contains(t, "round of 16"), strings.Contains(t, "last 16"):
		return StageRound16
	case strings.Contains(t, "quarter"):
		return StageQuarter
	case strings.Contains(t, "semi"):
		return StageSemi
	case strings.Contains(t, "third"):
		return StageThirdPlace
	case strings.Contains(t, "final"):
		return StageFinal
	case strings.Contains(t, "group"):
		return StageGroup
	default:
		return StageNone
	}
}

// ParseGroup extracts "A" from "Group A" or a bare single letter.
func ParseGroup(text string) string {
	if m := groupPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	t := strings.TrimSpace(text)
	if len(t) == 1 && isASCIILetter(t[0]) {
		return strings.ToUpper(t)
	}
	return ""
}

// ParseMatchday returns 1..3 or 0 when nothing valid is found.
func ParseMatchday(round int, text string) int {
	if round >= 1 && round <= 3 {
		return round
	}
	var digits string
	if m := matchdayPattern.FindStringSubmatch(text); m != nil {
		digits = m[1]
	} else {
		digits = digitsPattern.FindString(text)
	}
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 3 {
		return 0
	}
	return n
}

// ParseRound reads a numeric round that may arrive as "1", " 32 " or "".
func ParseRound(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Classification is the resolved stage/group/matchday triple.
type Classification struct {
	Stage    Stage
	Group    string
	Matchday int
}

// Classify resolves the stage from the round code, then the round text,
// then the presence of a group. Group and matchday survive only for GROUP.
func Classify(round int, roundText, groupText string) Classification {
	stage := InferStageFromRound(round)
	if stage == StageNone {
		stage = InferStageFromText(roundText)
	}
	groupSource := groupText
	if strings.TrimSpace(groupSource) == "" {
		groupSource = roundText
	}
	group := ParseGroup(groupSource)
	if stage == StageNone && group != "" {
		stage = StageGroup
	}
	if stage != StageGroup {
		return Classification{Stage: stage}
	}
	return Classification{
		Stage:    stage,
		Group:    group,
		Matchday: ParseMatchday(round, roundText),
	}
}

func (c Classification) StageKey() string {
	return BuildStageKey(c.Stage, c.Group, c.Matchday)
}

// BuildStageKey is GROUP-<g>-MD<n> for group games and the bare stage code
// otherwise. It is empty when the stage, or a group game's group or
// matchday, is unknown.
func BuildStageKey(stage Stage, group string, matchday int) string {
	switch stage {
	case StageNone:
		return ""
	case StageGroup:
		if group == "" || matchday <= 0 {
			return ""
		}
		return "GROUP-" + group + "-MD" + strconv.Itoa(matchday)
	default:
		return string(stage)
	}
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
