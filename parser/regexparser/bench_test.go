// Copyright © 2018 The ELPS authors

package regexparser_test

import (
	"strings"
	"testing"

	"github.com/luthersystems/reval/parser/regexparser"
)

const benchSource = `
fib: func [n] [
    either n < 2 [n] [(fib n - 1) + (fib n - 2)]
]
print ["fib" 20 "=" fib 20]
`

func BenchmarkParser(b *testing.B) {
	src := strings.Repeat(benchSource, 50)
	r := regexparser.NewReader()
	for i := 0; i < b.N; i++ {
		_, err := r.Read("bench", strings.NewReader(src))
		if err != nil {
			b.Fatal(err)
		}
	}
}
