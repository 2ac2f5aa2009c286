package files

import (
	"net/url"
	"strings"
)

const (
	uploadSegment  = "/upload/"
	attachmentFlag = "fl_attachment"
	upperHex       = "0123456789ABCDEF"
)

// AttachmentURL rewrites an object-storage URL so the store serves it as a
// download. The flag is inserted right after the first "/upload/" segment;
// URLs without that segment or already flagged are returned unchanged.
func AttachmentURL(raw string) string {
	if !strings.Contains(raw, uploadSegment) || strings.Contains(raw, attachmentFlag) {
		return raw
	}
	return strings.Replace(raw, uploadSegment, uploadSegment+attachmentFlag+"/", 1)
}

// EncodeURL percent-encodes characters that are not valid in a URL path,
// query or fragment. Valid %XX sequences are kept; a stray '%' becomes %25.
func EncodeURL(raw string) (string, error) {
	u, err := url.Parse(escapeStrayPercent(raw))
	if err != nil {
		return "", err
	}
	u.RawQuery = escapeQuery(u.RawQuery)
	return u.String(), nil
}

// escapeStrayPercent rewrites every '%' that does not start a %XX sequence.
func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeQuery encodes query bytes outside the RFC 3986 query set. Existing
// escapes and the separators '&' and '=' are left alone.
func escapeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for i := 0; i < len(q); i++ {
		c := q[i]
		if isQueryByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isQueryByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=:@/?%", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
