// Package flagx lets several flag sets share one command line. Each parser
// filters os.Args down to the flags it owns before calling flag.Parse, so
// unknown flags from other parsers do not make it fail.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Filter returns the arguments in args that belong to the named flags, in
// their original order. Names are given without dashes and match both the
// -name and --name spellings, with the value either attached (-name=v) or
// in the following argument. Flags listed in bools never consume the
// following argument, matching how package flag treats boolean flags.
func Filter(args []string, names []string, bools ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = false
	}
	for _, n := range bools {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, attached := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		isBool, ok := owned[name]
		if !ok {
			continue
		}
		out = append(out, arg)

		if attached || isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath extracts the value of -c or -config from args. It returns ""
// when neither is present or the value is missing.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to a JSON config file")
	fs.StringVar(&path, "c", "", "path to a JSON config file (short)")
	_ = fs.Parse(Filter(args, []string{"c", "config"}))

	return path
}
