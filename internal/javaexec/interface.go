package javaexec

import (
	"context"
	"io"
)

// Runtime runs a Java program to completion.
type Runtime interface {
	Exec(ctx context.Context, spec Spec) error
}

// Spec describes one Java invocation.
type Spec struct {
	MainClass string
	ClassPath []string
	JVMArgs   []string
	Args      []string
	Env       []string
	Dir       string
	Stdout    io.Writer
	Stderr    io.Writer
}
