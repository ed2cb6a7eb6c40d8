package table

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText returns data as UTF-8 text. A byte order mark selects the
// encoding; otherwise valid UTF-8 is used as-is and anything else goes
// through charset detection.
func decodeText(data []byte) string {
	if hasBOM(data) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err == nil {
			return string(decoded)
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return strings.ToValidUTF8(string(data), "�")
	}

	best, bestScore := "", -1<<31
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if score := r.Confidence - 10*strings.Count(text, "�"); score > bestScore {
			best, bestScore = text, score
		}
	}
	if bestScore == -1<<31 {
		return strings.ToValidUTF8(string(data), "�")
	}
	return best
}

func hasBOM(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	}
	return false
}

// lookupEncoding maps chardet charset names to decoders.
func lookupEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(charset)) {
	case "utf8", "ascii", "usascii":
		return unicode.UTF8
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso88591", "latin1":
		return charmap.ISO8859_1
	case "iso88592":
		return charmap.ISO8859_2
	case "iso88595":
		return charmap.ISO8859_5
	case "iso88597":
		return charmap.ISO8859_7
	case "iso88599":
		return charmap.ISO8859_9
	case "windows1250":
		return charmap.Windows1250
	case "windows1251":
		return charmap.Windows1251
	case "windows1252":
		return charmap.Windows1252
	case "koi8r":
		return charmap.KOI8R
	case "shiftjis", "cp932":
		return japanese.ShiftJIS
	case "eucjp":
		return japanese.EUCJP
	case "euckr":
		return korean.EUCKR
	case "gb18030", "gbk", "gb2312":
		return simplifiedchinese.GB18030
	case "big5":
		return traditionalchinese.Big5
	}
	return nil
}
