package export

import (
	"bytes"
	"strings"
)

// BOM is the UTF-8 byte order mark spreadsheet tools need to detect the encoding
const BOM = "\uFEFF"

// Serialize renders the header and rows as one CSV document: BOM first, fields joined
// by commas, lines by "\n", no trailing newline.
func Serialize(header []string, rows []Row) []byte {
	var buf bytes.Buffer
	buf.WriteString(BOM)
	writeLine(&buf, header)
	for i := range rows {
		buf.WriteByte('\n')
		writeLine(&buf, rows[i][:])
	}
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(EscapeField(f))
	}
}

// EscapeField quotes a field only when it contains a comma, double quote, CR or LF;
// embedded quotes are doubled.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
