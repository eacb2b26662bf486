// Package flagx pre-scans command-line arguments for the few flags that must
// be known before the full flag set is parsed, such as the JSON config path.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of allowed flags and their
// values. Both "-c conf.json" and "--config=conf.json" forms are kept; a
// following token that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// lookup parses only the given short/long flag pair out of args and returns
// its value, or def when neither is present.
func lookup(args []string, short, long, def string) string {
	value := def

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&value, long, def, "")
	fs.StringVar(&value, short, def, "")
	_ = fs.Parse(FilterArgs(args, []string{"-" + short, "-" + long}))

	return value
}

// JsonConfigFlags returns the config file path given via -c or -config, or
// an empty string.
func JsonConfigFlags() string {
	return lookup(os.Args[1:], "c", "config", "")
}

// EnvFileFlags returns the dotenv file path given via -e or -env. It falls
// back to ".env" in the working directory.
func EnvFileFlags() string {
	return lookup(os.Args[1:], "e", "env", ".env")
}
