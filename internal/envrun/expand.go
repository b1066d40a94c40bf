// expand.go implements command-line expansion for environment commands.
//
// Commands are written as single strings in the pipeline configuration
// and tokenized on whitespace — there is no shell interpretation, so a
// command behaves the same on every platform. Three placeholders are
// substituted during expansion:
//
//	{posargs}   the pass-through arguments given after "--"; expands to
//	            zero or more tokens and may only appear as a whole token
//	{workspace} the absolute workspace root
//	{coverdir}  the absolute coverage data directory
package envrun

import (
	"strings"
)

// posargsToken is the placeholder replaced by pass-through arguments.
const posargsToken = "{posargs}"

// ExpandCommand tokenizes a configured command string and substitutes
// placeholders. posargs replaces the {posargs} token wholesale (it may
// expand to nothing); vars are substituted textually inside each token,
// so forms like "{coverdir}/unit.out" work.
func ExpandCommand(command string, posargs []string, vars map[string]string) []string {
	fields := strings.Fields(command)
	argv := make([]string, 0, len(fields)+len(posargs))

	for _, field := range fields {
		if field == posargsToken {
			argv = append(argv, posargs...)
			continue
		}
		for name, value := range vars {
			field = strings.ReplaceAll(field, "{"+name+"}", value)
		}
		argv = append(argv, field)
	}

	return argv
}
