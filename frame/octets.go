// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import "strings"

var headerEscaper = strings.NewReplacer(
	"\\", "\\\\",
	":", "\\c",
	"\n", "\\n",
	"\r", "\\r",
)

// escapeHeader encodes a header name or value of a frame whose headers are escaped.
func escapeHeader(s string) string {
	return headerEscaper.Replace(s)
}

// unescapeOctet decodes the character following a backslash.
func unescapeOctet(ch rune) (rune, error) {
	switch ch {
	case '\\':
		return '\\', nil
	case 'c':
		return ':', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	}
	return 0, malformed("undefined escape sequence '\\" + string(ch) + "'")
}
