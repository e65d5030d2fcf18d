package markdown

import (
	"fmt"

	"github.com/Kunde21/markdownfmt/v3"
	mdfmt "github.com/Kunde21/markdownfmt/v3/markdown"
)

// Format 用 markdownfmt 规整 Markdown 文本
func Format(src []byte) ([]byte, error) {
	out, err := markdownfmt.Process("", src,
		mdfmt.WithCodeFormatters(mdfmt.GoCodeFormatter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to format markdown: %w", err)
	}
	return out, nil
}
