// Copyright © 2024 The ELPS authors

package eval

import (
	"strings"
)

// FeedFlags is the set of state bits carried by a Feed.
type FeedFlags uint8

// Possible FeedFlags values.
const (
	// FeedNoLookahead suppresses enfix lookahead for exactly one step.  The
	// flag is cleared by the first step that observes it.
	FeedNoLookahead FeedFlags = 1 << iota
	// FeedBarrierHit is set when argument gathering stops at a `|`.
	FeedBarrierHit
	// FeedConst causes sequence values fetched from the feed to be const.
	FeedConst
	// FeedTookHold is set when the feed holds a sequence it reified.
	FeedTookHold
)

var feedFlagNames = []string{"no-lookahead", "barrier-hit", "const", "took-hold"}

// Has returns true if all of mask is set.
func (ff FeedFlags) Has(mask FeedFlags) bool { return ff&mask == mask }

func (ff FeedFlags) String() string {
	return flagString(uint32(ff), feedFlagNames)
}

// EvalFlags is the set of bits controlling a single evaluation step.
type EvalFlags uint8

// Possible EvalFlags values.
const (
	// EvalToEnd makes a frame keep stepping until its feed is exhausted.
	EvalToEnd EvalFlags = 1 << iota
	// EvalPostSwitch enters the core after the dispatch switch, directly at
	// enfix lookahead.  The output already holds the left hand value.
	EvalPostSwitch
	// EvalInertOptimization records that the fast path produced the left
	// hand value of a post-switch entry.
	EvalInertOptimization
	// EvalReevaluateCell dispatches a captured value instead of fetching one.
	EvalReevaluateCell
	// EvalNoResidue makes single-step variadic evaluation fail when input
	// remains after the step.
	EvalNoResidue
	// EvalFulfillingArg marks a step gathering an action argument.
	EvalFulfillingArg
)

var evalFlagNames = []string{
	"to-end",
	"post-switch",
	"inert-optimization",
	"reevaluate-cell",
	"no-residue",
	"fulfilling-arg",
}

// Has returns true if all of mask is set.
func (ef EvalFlags) Has(mask EvalFlags) bool { return ef&mask == mask }

func (ef EvalFlags) String() string {
	return flagString(uint32(ef), evalFlagNames)
}

func flagString(bits uint32, names []string) string {
	var set []string
	for i, name := range names {
		if bits&(1<<i) != 0 {
			set = append(set, name)
		}
	}
	return "[" + strings.Join(set, " ") + "]"
}

// Mode is the phase of a Frame.
type Mode uint8

// Possible Mode values.
const (
	// ModeGuardOnly frames evaluate without having invoked an action.  They
	// exist to keep their feed reachable and are invisible to reflection.
	ModeGuardOnly Mode = iota
	// ModeArgs frames are gathering the ordinary arguments of an action.
	ModeArgs
	// ModeRefinementPickup frames are gathering the arguments of the
	// refinements named in the invoking path.
	ModeRefinementPickup
	// ModeFunction frames are running an action whose arguments are
	// complete.
	ModeFunction
)

var modeStrings = []string{
	ModeGuardOnly:        "guard-only",
	ModeArgs:             "args",
	ModeRefinementPickup: "refinement-pickup",
	ModeFunction:         "function",
}

func (m Mode) String() string {
	if int(m) >= len(modeStrings) {
		return "invalid"
	}
	return modeStrings[m]
}

// IsPending returns true for modes in which an action is still gathering
// arguments.
func (m Mode) IsPending() bool {
	return m == ModeArgs || m == ModeRefinementPickup
}

// IsRunning returns true if m is ModeFunction.
func (m Mode) IsRunning() bool {
	return m == ModeFunction
}
