// Package codec maps a note's persisted fields to and from the flat
// text blob stored in a note file. Decoding tolerates every historical
// file layout and never fails: the worst case treats the raw text as
// the note body.
package codec

import (
	"encoding/base64"
	"strings"
)

// separator divides the header from the body in versioned files. The
// body is not escaped, so a headerless file whose content contains the
// separator decodes through the raw fallback.
const separator = "\n---\n"

// Header line prefixes. folderPrefix marks the current format. The
// legacy prefixes identify the oldest versioned format, whose header
// is stripped and discarded on decode.
const (
	folderPrefix = "folder:"
	rtfPrefix    = "rtf:"
)

var legacyPrefixes = []string{"title:", "createdAt:", "updatedAt:"}

// File holds the fields persisted inside a single note file.
type File struct {
	Folder string
	Body   string
	Rich   []byte
}

// format identifies which historical layout a blob uses.
type format int

const (
	formatPlain   format = iota // no separator, raw body only
	formatCurrent               // folder: and rtf: header lines
	formatLegacy                // title:/createdAt:/updatedAt: header
	formatUnknown               // separator present, header unrecognised
)

// Encode renders f as header lines, separator, then the raw body:
//
//	folder:<name>
//	rtf:<base64-or-empty>
//	---
//	<body>
func Encode(f File) []byte {
	var b strings.Builder
	b.WriteString(folderPrefix)
	b.WriteString(f.Folder)
	b.WriteString("\n")
	b.WriteString(rtfPrefix)
	if len(f.Rich) > 0 {
		b.WriteString(base64.StdEncoding.EncodeToString(f.Rich))
	}
	b.WriteString(separator)
	b.WriteString(f.Body)
	return []byte(b.String())
}

// Decode parses a blob written by any historical version of the app.
// Plain files and files with an unrecognised header come back whole as
// the body; legacy headers are stripped; only the current format
// carries a folder and rich payload.
func Decode(data []byte) File {
	text := string(data)
	idx := strings.Index(text, separator)
	if idx < 0 {
		return File{Body: text}
	}
	header := text[:idx]
	body := text[idx+len(separator):]

	switch classify(header) {
	case formatCurrent:
		f := File{Body: body}
		for _, line := range strings.Split(header, "\n") {
			switch {
			case strings.HasPrefix(line, folderPrefix):
				f.Folder = strings.TrimPrefix(line, folderPrefix)
			case strings.HasPrefix(line, rtfPrefix):
				f.Rich = decodeRich(strings.TrimPrefix(line, rtfPrefix))
			}
		}
		return f
	case formatLegacy:
		return File{Body: body}
	default:
		return File{Body: text}
	}
}

// classify inspects the header block in front of the first separator.
func classify(header string) format {
	lines := strings.Split(header, "\n")
	if strings.HasPrefix(lines[0], folderPrefix) {
		return formatCurrent
	}
	for _, line := range lines {
		for _, p := range legacyPrefixes {
			if strings.HasPrefix(line, p) {
				return formatLegacy
			}
		}
	}
	return formatUnknown
}

// decodeRich decodes the base64 rtf value. Empty or invalid values
// degrade to no payload.
func decodeRich(v string) []byte {
	if v == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	return raw
}
