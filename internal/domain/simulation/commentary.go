package simulation

import (
	"fmt"
	"strings"

	"github.com/okian/dreamxi/internal/domain/model"
)

type phrase int

const (
	phrasePassForward phrase = iota
	phrasePassIntercepted
	phraseDribble
	phraseTackle
	phraseGoal
	phraseShotSaved
	phraseBlocked
	phraseBuildUp
	phraseBuildUpLost
	phraseCard
)

// Templates take, in order: actor, actor's team, other (player or team), area.
var phrases = map[phrase]string{
	phrasePassForward:     "%[1]s (%[2]s) threads a pass into the attacking third %[4]s.",
	phrasePassIntercepted: "%[1]s's pass %[4]s is intercepted by %[3]s.",
	phraseDribble:         "%[1]s (%[2]s) skips past the defender %[4]s!",
	phraseTackle:          "A clean tackle from %[1]s (%[2]s) stops %[3]s %[4]s.",
	phraseGoal:            "GOAL! %[1]s (%[2]s) finds the net!",
	phraseShotSaved:       "%[1]s (%[2]s) lets fly %[4]s, but it's kept out!",
	phraseBlocked:         "%[1]s (%[2]s) throws a body in front of %[3]s's shot %[4]s.",
	phraseBuildUp:         "%[1]s (%[2]s) builds from the back %[4]s.",
	phraseBuildUpLost:     "%[1]s is robbed %[4]s and %[3]s pounce!",
	phraseCard:            "%[1]s (%[2]s) goes into the book %[4]s.",
}

func narrate(p phrase, actor, team, other, area string) string {
	return fmt.Sprintf(phrases[p], actor, strings.ToUpper(labelOr(team)), labelOr(other), area)
}

func labelOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "the opposition"
	}
	return s
}

func wideShot(player string) string {
	return fmt.Sprintf("%s drags the shot just wide.", player)
}

// DescribeArea names the part of the pitch at p from side's point of view.
func DescribeArea(p model.Point, side model.Side) string {
	return describe(p, side)
}

func describe(p model.Point, side model.Side) string {
	rel := orient(side, p)

	var vert string
	switch {
	case rel.Y > 0.8:
		vert = "in the opposition box"
	case rel.Y > 0.6:
		vert = "in the final third"
	case rel.Y > 0.4:
		vert = "in midfield"
	case rel.Y > 0.25:
		vert = "in their own half"
	default:
		vert = "near their own box"
	}

	switch {
	case rel.X < 0.33:
		return vert + " on the left"
	case rel.X > 0.66:
		return vert + " on the right"
	default:
		return vert
	}
}
