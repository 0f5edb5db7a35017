// Copyright © 2024 The ELPS authors

//go:build reval_checks

package eval

// checkInvariants enables internal consistency checks on the evaluator's hot
// paths.
const checkInvariants = true
