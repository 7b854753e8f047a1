package infrastructure

import "strings"

// shellMeta holds the characters a POSIX shell treats specially
const shellMeta = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// QuoteArg renders one argument the way a user would type it into a shell.
// Commands are always executed with an argv slice; this is for logs only.
func QuoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, shellMeta) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

// FormatCommand renders a binary and its arguments as a copy-pasteable line
func FormatCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, QuoteArg(binary))
	for _, arg := range args {
		parts = append(parts, QuoteArg(arg))
	}
	return strings.Join(parts, " ")
}
