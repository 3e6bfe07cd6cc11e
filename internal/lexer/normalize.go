package lexer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// bom is the UTF-8 byte order mark some editors prepend to source files.
const bom = "\uFEFF"

// normalize canonicalizes raw .cz source before scanning: the BOM is
// stripped and the text is converted to Unicode NFC, so a source file
// spelling an identifier with decomposed code points tokenizes the same
// as one using the precomposed form. The scanner never sees
// unnormalized input — New runs this once per Lex.
func normalize(src string) string {
	src = strings.TrimPrefix(src, bom)
	if norm.NFC.IsNormalString(src) {
		return src
	}
	return norm.NFC.String(src)
}
