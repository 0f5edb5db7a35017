// Copyright © 2018 The ELPS authors

package evallib

import (
	"fmt"
	"strings"

	"github.com/luthersystems/reval/eval"
)

func ioNatives() []*eval.Native {
	return []*eval.Native{
		{Name: "print", Formals: eval.Formals("value"), Fun: nativePrint,
			Doc: `Writes value to standard output followed by a newline.  A
			block is reduced and its products are written separated by
			spaces.  Strings are written without quotes.  Produces no
			value.`},
		{Name: "probe", Formals: eval.Formals("value"), Fun: nativeProbe,
			Doc: `Writes the molded form of value to standard output and
			returns value.`},
		{Name: "mold", Formals: eval.Formals("value"), Fun: nativeMold,
			Doc: `Returns the source form of value as a string.`},
		{Name: "form", Formals: eval.Formals("value"), Fun: nativeForm,
			Doc: `Returns the display form of value as a string.`},
		{Name: "type-of", Formals: eval.Formals("value"), Fun: nativeTypeOf,
			Doc: `Returns the datatype name of value as a word.`},
	}
}

// form returns the display form of v.  Strings are unquoted and the items
// of blocks are separated by spaces.
func form(v eval.Value) string {
	switch v.Kind {
	case eval.KindString:
		return v.Str
	case eval.KindBlock:
		return formItems(v)
	}
	return eval.Mold(v)
}

func formItems(v eval.Value) string {
	items := v.Items()
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = form(item)
	}
	return strings.Join(parts, " ")
}

func nativePrint(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	value := f.Arg("value")
	if value.Kind == eval.KindBlock {
		v, threw, err := reduceBlock(rt, value, f.Feed.Context())
		if threw {
			*f.Out = v
			return true, nil
		}
		if err != nil {
			return false, err
		}
		value = v
	}
	_, err := fmt.Fprintln(rt.Stdout, form(value))
	return false, err
}

func nativeProbe(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	value := f.Arg("value")
	_, err := fmt.Fprintln(rt.Stdout, eval.Mold(value))
	if err != nil {
		return false, err
	}
	*f.Out = value
	return false, nil
}

func nativeMold(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.String(eval.Mold(f.Arg("value")))
	return false, nil
}

func nativeForm(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.String(form(f.Arg("value")))
	return false, nil
}

func nativeTypeOf(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.Word(f.Arg("value").Kind.String())
	return false, nil
}
