package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes confirmation-page links: HTTPS scheme, lowercase
// host without www, no trailing slash, tracking parameters stripped.
func NormalizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	if after, ok := strings.CutPrefix(u.Host, "www."); ok {
		u.Host = after
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	qClean := url.Values{}
	for k, values := range q {
		key := strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, v := range values {
			if v != "" {
				qClean.Add(key, v)
			}
		}
	}
	u.RawQuery = qClean.Encode()

	return u.String()
}
