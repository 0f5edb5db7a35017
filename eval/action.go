// Copyright © 2024 The ELPS authors

package eval

import (
	"fmt"
	"strings"
)

// NativeFunc implements an action.  A native reads its arguments from f and
// writes its result to f.Out.  Invisible actions leave f.Out untouched.
type NativeFunc func(rt *Runtime, f *Frame) (threw bool, err error)

// ParamClass determines how an argument is gathered from the feed.
type ParamClass uint8

// Possible ParamClass values.
const (
	// ParamNormal arguments are the product of one evaluation step.
	ParamNormal ParamClass = iota
	// ParamHardQuote arguments are taken literally from the feed.
	ParamHardQuote
	// ParamSoftQuote arguments are taken literally unless they are groups
	// or get-words, which are evaluated.
	ParamSoftQuote
	// ParamRefinement parameters are switches named in the invoking path.
	// Parameters following a refinement belong to it and are only gathered
	// when it is used.
	ParamRefinement
)

// Param describes one parameter of an action.
type Param struct {
	Name  string
	Class ParamClass
	Types TypeSet
	// Endable parameters accept the end of the feed, or a `|`, as an absent
	// argument.
	Endable bool
	// Skippable parameters are left absent when the next value of the feed
	// is not accepted by Types, without consuming it.
	Skippable bool
	// Refinement is the index of the refinement that owns the parameter, or
	// -1.
	Refinement int
}

func (p Param) String() string {
	var buf strings.Builder
	switch p.Class {
	case ParamHardQuote:
		buf.WriteString("'")
	case ParamSoftQuote:
		buf.WriteString(":")
	case ParamRefinement:
		buf.WriteString("/")
	}
	buf.WriteString(p.Name)
	if p.Endable {
		buf.WriteString(" <end>")
	}
	if p.Skippable {
		buf.WriteString(" <skip>")
	}
	if !p.Types.IsAny() {
		buf.WriteString(" [")
		buf.WriteString(p.Types.String())
		buf.WriteString("]")
	}
	return buf.String()
}

// Action is a callable entity.
type Action struct {
	Name   string
	Params []Param
	Native NativeFunc
	// Enfix actions take their first argument from the value to their left.
	Enfix bool
	// Invisible actions produce no value.
	Invisible bool
	Doc       string
}

// NewNative returns an action implemented by fn.
func NewNative(name string, params []Param, fn NativeFunc) *Action {
	return &Action{
		Name:   name,
		Params: params,
		Native: fn,
	}
}

// Enfixed returns a copy of act which takes its first argument from the
// left.
func (act *Action) Enfixed() *Action {
	cp := *act
	cp.Enfix = true
	return &cp
}

// ParamIndex returns the index of the parameter named name, or -1.
func (act *Action) ParamIndex(name string) int {
	for i := range act.Params {
		if act.Params[i].Name == name {
			return i
		}
	}
	return -1
}

// FirstParam returns the first parameter which is not a refinement and does
// not belong to one.
func (act *Action) FirstParam() (Param, bool) {
	for _, p := range act.Params {
		if p.Class == ParamRefinement || p.Refinement >= 0 {
			continue
		}
		return p, true
	}
	return Param{}, false
}

// QuotesFirst returns true if the first argument of act is quoted.
func (act *Action) QuotesFirst() bool {
	p, ok := act.FirstParam()
	return ok && (p.Class == ParamHardQuote || p.Class == ParamSoftQuote)
}

// SkippableFirst returns true if the first argument of act is skippable.
func (act *Action) SkippableFirst() bool {
	p, ok := act.FirstParam()
	return ok && p.Skippable
}

func (act *Action) String() string {
	var buf strings.Builder
	buf.WriteString(act.Name)
	buf.WriteString(" [")
	for i, p := range act.Params {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(p.String())
	}
	buf.WriteString("]")
	return buf.String()
}

// Formals builds a parameter list from compact descriptions, one per
// parameter.  Each description is a name followed by optional type names
// and the tags <end> and <skip>.  The name may be prefixed with ' for a hard
// quoted parameter, : for a soft quoted one and / for a refinement.
//
//	Formals("value", "/limit", "frames blank! integer!")
//
// Formals panics on malformed descriptions.
func Formals(descs ...string) []Param {
	params := make([]Param, 0, len(descs))
	owner := -1
	for _, desc := range descs {
		fields := strings.Fields(desc)
		if len(fields) == 0 {
			panic("empty parameter description")
		}
		p := Param{Refinement: owner}
		name := fields[0]
		switch name[0] {
		case '\'':
			p.Class = ParamHardQuote
			name = name[1:]
		case ':':
			p.Class = ParamSoftQuote
			name = name[1:]
		case '/':
			p.Class = ParamRefinement
			p.Refinement = -1
			name = name[1:]
			owner = len(params)
		}
		p.Name = name
		for _, tok := range fields[1:] {
			switch tok {
			case "<end>":
				p.Endable = true
			case "<skip>":
				p.Skippable = true
			default:
				k, ok := KindOf(tok)
				if !ok {
					panic(fmt.Sprintf("unknown datatype in parameter description: %q", tok))
				}
				p.Types |= Types(k)
			}
		}
		params = append(params, p)
	}
	return params
}

// ParseSpec builds a parameter list from a block of the form
//
//	[a 'b :c [integer! string!] /only d]
//
// Words are normal parameters, lit-words are hard quoted and get-words are
// soft quoted.  A block following a parameter restricts its types.  A
// refinement starts a group of parameters which are only gathered when the
// refinement is used.  Strings are ignored as documentation.
func ParseSpec(spec Value) ([]Param, error) {
	if spec.Kind != KindBlock {
		return nil, Errorf(ErrTypeMismatch, "function spec must be a block, got %v", spec.Kind)
	}
	var params []Param
	owner := -1
	for _, item := range spec.Items() {
		switch item.Kind {
		case KindString:
			continue
		case KindWord:
			params = append(params, Param{Name: item.Str, Refinement: owner})
		case KindLitWord:
			params = append(params, Param{Name: item.Str, Class: ParamHardQuote, Refinement: owner})
		case KindGetWord:
			params = append(params, Param{Name: item.Str, Class: ParamSoftQuote, Refinement: owner})
		case KindPath:
			if !item.IsRefinement() {
				return nil, Errorf(ErrInvalidArgument, "bad function spec item: %v", item)
			}
			owner = len(params)
			params = append(params, Param{
				Name:       item.Seq.At(1).Str,
				Class:      ParamRefinement,
				Refinement: -1,
			})
		case KindBlock:
			if len(params) == 0 {
				return nil, Errorf(ErrInvalidArgument, "type block without a parameter in function spec")
			}
			p := &params[len(params)-1]
			for _, t := range item.Items() {
				if t.Kind != KindWord {
					return nil, Errorf(ErrInvalidArgument, "bad type in function spec: %v", t)
				}
				k, ok := KindOf(t.Str)
				if !ok {
					return nil, Errorf(ErrInvalidArgument, "unknown datatype in function spec: %v", t)
				}
				p.Types |= Types(k)
			}
		default:
			return nil, Errorf(ErrInvalidArgument, "bad function spec item: %v", item)
		}
	}
	for i := range params {
		for j := i + 1; j < len(params); j++ {
			if params[i].Name == params[j].Name {
				return nil, Errorf(ErrInvalidArgument, "duplicate parameter in function spec: %s", params[i].Name)
			}
		}
	}
	return params, nil
}
