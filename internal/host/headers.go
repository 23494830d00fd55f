package host

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// headerReadLimit mirrors the CMS convention of only inspecting the first 8KB
// of a file for header declarations.
const headerReadLimit = 8 * 1024

var headerLineRe = regexp.MustCompile(`(?m)^[ \t/*#@]*([A-Za-z][A-Za-z0-9 ]*?):[ \t]*(.+?)[ \t]*(?:\*/)?$`)

// ReadHeaders extracts "Key: Value" declarations from the comment block at the
// top of an artifact file.
func ReadHeaders(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, headerReadLimit)
	n, err := bufio.NewReader(f).Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for _, m := range headerLineRe.FindAllStringSubmatch(string(buf[:n]), -1) {
		key := strings.TrimSpace(m[1])
		if _, exists := headers[key]; !exists {
			headers[key] = strings.TrimSpace(m[2])
		}
	}
	return headers, nil
}

// networkMode derives the activation constraints from header declarations.
//
// "PS Network" takes precedence over the legacy "Network" header:
//   - PS Network: flexible        -> both modes possible
//   - PS Network: required|true   -> network-only, but only on multisite
//   - Network: true               -> always network-only
//   - no header                   -> site-by-site only
func networkMode(headers map[string]string, multisite bool) (networkOnly bool, mode string) {
	if v, ok := headers["PS Network"]; ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "flexible":
			return false, NetworkModeFlexible
		case "required", "true":
			return multisite, NetworkModeRequired
		}
	}
	if v, ok := headers["Network"]; ok {
		if strings.ToLower(strings.TrimSpace(v)) == "true" {
			return true, NetworkModeWordPress
		}
	}
	return false, NetworkModeNone
}
