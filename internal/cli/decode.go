package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding 无法识别的输入编码名
var ErrUnknownEncoding = errors.New("unknown encoding")

var encodings = map[string]encoding.Encoding{
	"gbk":       simplifiedchinese.GBK,
	"gb18030":   simplifiedchinese.GB18030,
	"big5":      traditionalchinese.Big5,
	"shift_jis": japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
	"euc-kr":    korean.EUCKR,
	"latin1":    charmap.ISO8859_1,
	"cp1252":    charmap.Windows1252,
	"utf-16le":  xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
	"utf-16be":  xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM),
}

// decodeInput 把输入转换为 UTF-8。name 为空或 "auto" 时按 BOM 和 UTF-8 合法性判断，
// 都不满足时依次尝试常见的东亚编码。
func decodeInput(data []byte, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "auto":
	case "utf-8", "utf8":
		return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), nil
	default:
		enc, ok := encodings[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
		return decodeWith(enc, data)
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeWith(encodings["utf-16le"], data[2:])
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeWith(encodings["utf-16be"], data[2:])
	case utf8.Valid(data):
		return string(data), nil
	}

	for _, enc := range []encoding.Encoding{simplifiedchinese.GB18030, traditionalchinese.Big5, japanese.ShiftJIS, korean.EUCKR} {
		if s, err := decodeWith(enc, data); err == nil && !strings.ContainsRune(s, utf8.RuneError) {
			return s, nil
		}
	}
	return decodeWith(charmap.Windows1252, data)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("解码输入失败: %w", err)
	}
	return string(res), nil
}
