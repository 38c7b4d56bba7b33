// Command travelctl inspects the site offline: sitemaps, structured data,
// routes and an SEO audit, all rendered in-process from the repository's data.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var ee *exitErr
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}
