package pipeline

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/shapestone/csv-engine/internal/csverr"
)

// charsets maps the lower-cased, hyphen/underscore-insensitive charset name
// to its golang.org/x/text/encoding.Encoding. UTF-8 has no entry: it is the
// pipeline's native form and needs no transform.
var charsets = map[string]encoding.Encoding{
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"utf-16":   unicode.UTF16(unicode.BigEndian, unicode.UseBOM),

	"iso-8859-1":  charmap.ISO8859_1,
	"iso-8859-2":  charmap.ISO8859_2,
	"iso-8859-3":  charmap.ISO8859_3,
	"iso-8859-4":  charmap.ISO8859_4,
	"iso-8859-5":  charmap.ISO8859_5,
	"iso-8859-6":  charmap.ISO8859_6,
	"iso-8859-7":  charmap.ISO8859_7,
	"iso-8859-8":  charmap.ISO8859_8,
	"iso-8859-9":  charmap.ISO8859_9,
	"iso-8859-10": charmap.ISO8859_10,
	"iso-8859-13": charmap.ISO8859_13,
	"iso-8859-14": charmap.ISO8859_14,
	"iso-8859-15": charmap.ISO8859_15,
	"iso-8859-16": charmap.ISO8859_16,

	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1253": charmap.Windows1253,
	"windows-1254": charmap.Windows1254,
	"windows-1255": charmap.Windows1255,
	"windows-1256": charmap.Windows1256,
	"windows-1257": charmap.Windows1257,
	"windows-1258": charmap.Windows1258,

	"shift-jis": japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
	"gb18030":   simplifiedchinese.GB18030,
	"euc-kr":    korean.EUCKR,
}

func normalizeCharsetName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	return name
}

// lookupCharset resolves name to an encoding, or reports UnsupportedCharset.
// "", "utf-8", and "utf8" are treated as the pipeline's native form: a nil
// encoding with no error. A name outside the known set is rejected unless
// allowNonStandard is set (spec §6's "Unknown values are rejected unless
// allowNonStandardCharsets=true"), in which case it is treated the same as
// the native form: the bytes pass through undecoded.
func lookupCharset(name string, allowNonStandard bool) (encoding.Encoding, error) {
	n := normalizeCharsetName(name)
	if n == "" || n == "utf-8" || n == "utf8" {
		return nil, nil
	}
	if enc, ok := charsets[n]; ok {
		return enc, nil
	}
	if allowNonStandard {
		return nil, nil
	}
	return nil, csverr.New(csverr.UnsupportedCharset, "unsupported charset: "+name)
}
