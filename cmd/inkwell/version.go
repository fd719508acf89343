package main

import (
	"fmt"
	"io"
)

type versionCmd struct {
	*root
	out io.Writer
}

func (v *versionCmd) Run() error {
	fmt.Fprintf(v.out, "%s version %s\n", v.root.program, version)
	if commit != "" {
		fmt.Fprintf(v.out, "commit %s\n", commit)
	}
	if date != "" {
		fmt.Fprintf(v.out, "built %s\n", date)
	}
	return nil
}
