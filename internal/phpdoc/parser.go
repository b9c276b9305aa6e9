package phpdoc

import (
	"regexp"
	"strings"

	"github.com/doITmagic/php-analyzer/internal/phptype"
)

var (
	paramRe   = regexp.MustCompile(`^@param\s+(\S+)\s+\$(\w+)(?:\s+(.*))?$`)
	returnRe  = regexp.MustCompile(`^@return\s+(\S+)(?:\s+(.*))?$`)
	varRe     = regexp.MustCompile(`^@var\s+(\S+)(?:\s+\$?(\w+))?(?:\s+(.*))?$`)
	withVarRe = regexp.MustCompile(`^(@property(?:-read|-write)?|@method)\s+(\S+)\s+\$(\w+)(?:\s+(.*))?$`)
	templateRe = regexp.MustCompile(`^@template(?:-covariant|-contravariant)?\s+(\w+)(?:\s+(?:of|as)\s+(\S+))?(?:\s+(.*))?$`)
	bareTagRe = regexp.MustCompile(`^(@\w[\w-]*)(?:\s+(.*))?$`)
)

// Parse extracts a Doc from the raw text of a T_DOC_COMMENT token,
// including its "/**"..."*/" delimiters. Offsets in every returned
// Entry are byte positions within raw, not within the stripped line
// text, so callers can slice raw[e.Start:e.End] directly.
func Parse(raw string) *Doc {
	doc := &Doc{}
	if raw == "" {
		return doc
	}

	lineStart := 0
	sawTag := false
	for lineStart <= len(raw) {
		nl := strings.IndexByte(raw[lineStart:], '\n')
		var line string
		var lineEnd int
		if nl < 0 {
			line = raw[lineStart:]
			lineEnd = len(raw)
		} else {
			line = raw[lineStart : lineStart+nl]
			lineEnd = lineStart + nl
		}

		content, contentStart := stripDecoration(line, lineStart)
		contentEnd := contentStart + len(content)

		switch {
		case content == "" && (strings.TrimSpace(line) == "/**" || strings.TrimSpace(line) == "*/"):
			// A line holding only the "/**" opener or "*/" closer is
			// decoration, not an empty line of the comment body.
		case content == "":
			doc.Entries = append(doc.Entries, Entry{Kind: EntryEmptyLine, Start: lineStart, End: lineEnd})
		case strings.HasPrefix(content, "@"):
			sawTag = true
			doc.Entries = append(doc.Entries, parseTagLine(content, contentStart, contentEnd))
		case sawTag:
			doc.Entries = append(doc.Entries, Entry{
				Kind: EntryAnything, Start: contentStart, End: contentEnd,
				Description: content,
			})
		default:
			doc.Entries = append(doc.Entries, Entry{
				Kind: EntryDescription, Start: contentStart, End: contentEnd,
				Description: content,
			})
		}

		if nl < 0 {
			break
		}
		lineStart = lineStart + nl + 1
	}
	return doc
}

// stripDecoration removes "/**", "*/", a leading "*", and surrounding
// whitespace from one physical line, returning the remaining content
// plus the absolute byte offset (within the original comment) where
// that content begins.
func stripDecoration(line string, lineStart int) (string, int) {
	offset := 0
	trimmed := line

	// Leading whitespace.
	lead := len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
	trimmed = trimmed[lead:]
	offset += lead

	for _, prefix := range []string{"/**", "/*", "*/"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = trimmed[len(prefix):]
			offset += len(prefix)
		}
	}
	if strings.HasPrefix(trimmed, "*") {
		trimmed = trimmed[1:]
		offset++
	}

	lead2 := len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
	trimmed = trimmed[lead2:]
	offset += lead2

	trimmedRight := strings.TrimRight(trimmed, " \t\r")
	trimmedRight = strings.TrimSuffix(trimmedRight, "*/")
	trimmedRight = strings.TrimRight(trimmedRight, " \t\r")

	return trimmedRight, lineStart + offset
}

func parseTagLine(content string, start, end int) Entry {
	if m := paramRe.FindStringSubmatch(content); m != nil {
		it, err := phptype.ParseTypeExpression(m[1])
		return Entry{
			Kind: EntryParam, Start: start, End: end,
			RawType: m[1], ParsedType: it, TypeErr: err,
			VarName: m[2], Description: m[3],
		}
	}
	if m := returnRe.FindStringSubmatch(content); m != nil {
		it, err := phptype.ParseTypeExpression(m[1])
		return Entry{
			Kind: EntryReturn, Start: start, End: end,
			RawType: m[1], ParsedType: it, TypeErr: err,
			Description: m[2],
		}
	}
	if m := varRe.FindStringSubmatch(content); m != nil {
		it, err := phptype.ParseTypeExpression(m[1])
		return Entry{
			Kind: EntryVar, Start: start, End: end,
			RawType: m[1], ParsedType: it, TypeErr: err,
			VarName: m[2], Description: m[3],
		}
	}
	if m := withVarRe.FindStringSubmatch(content); m != nil {
		it, err := phptype.ParseTypeExpression(m[2])
		return Entry{
			Kind: EntryGeneralWithParam, Start: start, End: end,
			Tag: m[1], RawType: m[2], ParsedType: it, TypeErr: err,
			VarName: m[3], Description: m[4],
		}
	}
	if m := templateRe.FindStringSubmatch(content); m != nil {
		return Entry{
			Kind: EntryGeneralWithParam, Start: start, End: end,
			Tag: "template", RawType: m[2], VarName: m[1], Description: m[3],
		}
	}
	if m := bareTagRe.FindStringSubmatch(content); m != nil {
		return Entry{
			Kind: EntryGeneral, Start: start, End: end,
			Tag: m[1], Description: m[2],
		}
	}
	return Entry{Kind: EntryAnything, Start: start, End: end, Description: content}
}
