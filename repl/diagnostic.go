// Copyright © 2024 The ELPS authors

package repl

import (
	"github.com/luthersystems/reval/diagnostic"
)

// renderError renders an evaluation error with the diagnostic renderer.  The
// innermost level of the error's backtrace is shown as a snippet and the
// outer levels as notes.
func (r *repl) renderError(err error) {
	d := diagnostic.FromError(err)
	if r.renderer.Format == diagnostic.FormatText {
		d.Notes = append(d.Notes, "use help to browse available words")
	}
	_ = r.renderer.Render(r.out, d)
}
