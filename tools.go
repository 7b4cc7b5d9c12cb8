//go:build tools

package tools

// This file tracks CLI tool dependencies used during development.
// It is not compiled into the binary.
//
// goose is declared as a go.mod tool directive and drives migrations
// (see cmd/migrate). moq regenerates the interface mocks referenced by
// go:generate comments in test files:
//
//	go tool goose
//	go run github.com/matryer/moq@latest
