// Copyright © 2024 The ELPS authors

//go:build !reval_checks

package eval

const checkInvariants = false
