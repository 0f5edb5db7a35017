// Copyright © 2018 The ELPS authors

package evallib

import (
	"github.com/luthersystems/reval/eval"
)

const seriesTypes = "block! group!"

func seriesNatives() []*eval.Native {
	return []*eval.Native{
		{Name: "append", Formals: eval.Formals("series "+seriesTypes, "value"), Fun: nativeAppend,
			Doc: `Adds value to the tail of series and returns series.`},
		{Name: "clear", Formals: eval.Formals("series "+seriesTypes), Fun: nativeClear,
			Doc: `Removes the values of series from its position to its tail
			and returns series.`},
		{Name: "poke", Formals: eval.Formals("series "+seriesTypes, "index integer!", "value"), Fun: nativePoke,
			Doc: `Replaces the value at the 1-based index of series and
			returns value.`},
		{Name: "pick", Formals: eval.Formals("series "+seriesTypes, "picker integer! word!"), Fun: nativePick,
			Doc: `Returns the value at an integer position of series, or the
			value following a word.  Returns blank when there is none.`},
		{Name: "length-of", Formals: eval.Formals("series "+seriesTypes+" string!"), Fun: nativeLengthOf,
			Doc: `Returns the number of values from the position of series to
			its tail.`},
		{Name: "copy", Formals: eval.Formals("series "+seriesTypes), Fun: nativeCopy,
			Doc: `Returns a new mutable series with the values of series.`},
		{Name: "const", Formals: eval.Formals("series "+seriesTypes), Fun: nativeConst,
			Doc: `Returns a reference to series through which it may not be
			modified.`},
		{Name: "collapse", Formals: eval.Formals("series "+seriesTypes, "limit integer!"), Fun: nativeCollapse,
			Doc: `Returns a display copy of series in which it, and any
			sequence nested in it, holds at most limit values followed by
			...`},
	}
}

func checkMutable(v eval.Value) error {
	if v.Const {
		return eval.Errorf(eval.ErrConstValue, "cannot modify const %v", v.Kind)
	}
	return nil
}

func nativeAppend(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	err := checkMutable(series)
	if err != nil {
		return false, err
	}
	series.Seq.Append(f.Arg("value"))
	*f.Out = series
	return false, nil
}

func nativeClear(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	err := checkMutable(series)
	if err != nil {
		return false, err
	}
	series.Seq.Clear(series.Index)
	*f.Out = series
	return false, nil
}

func nativePoke(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	err := checkMutable(series)
	if err != nil {
		return false, err
	}
	i := f.Arg("index").Int
	if i < 1 || i > int64(series.Len()) {
		return false, eval.Errorf(eval.ErrInvalidArgument, "index %d out of range for %v of length %d", i, series.Kind, series.Len())
	}
	value := f.Arg("value")
	series.Seq.Set(series.Index+int(i)-1, value)
	*f.Out = value
	return false, nil
}

func nativePick(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	v, err := eval.Pick(f.Arg("series"), f.Arg("picker"))
	if err != nil {
		return false, err
	}
	*f.Out = v
	return false, nil
}

func nativeLengthOf(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	if series.Kind == eval.KindString {
		*f.Out = eval.Integer(int64(len([]rune(series.Str))))
		return false, nil
	}
	*f.Out = eval.Integer(int64(series.Len()))
	return false, nil
}

func nativeCopy(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	cp := series
	cp.Seq = series.Seq.CopyAtMax(series.Index, -1)
	cp.Index = 0
	cp.Const = false
	*f.Out = cp
	return false, nil
}

func nativeConst(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	series.Const = true
	*f.Out = series
	return false, nil
}

func nativeCollapse(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	series := f.Arg("series")
	limit := f.Arg("limit").Int
	if limit < 0 {
		return false, eval.Errorf(eval.ErrInvalidArgument, "negative collapse limit: %d", limit)
	}
	*f.Out = eval.Block(eval.CollapseAt(series.Seq, series.Index, int(limit)))
	return false, nil
}
