// Package options validates mutually exclusive inputs.
package options

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasmend/oaserrors"
)

// Source names one way of supplying an input and whether the caller used it.
type Source struct {
	Name string
	Set  bool
}

// RequireExactlyOne returns a *oaserrors.ConfigError for option unless
// exactly one of sources is set.
func RequireExactlyOne(option string, sources ...Source) error {
	count := 0
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
		if s.Set {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return &oaserrors.ConfigError{
		Option:  option,
		Message: fmt.Sprintf("exactly one of %s must be provided (got %d)", joinAlternatives(names), count),
	}
}

// joinAlternatives renders names as "a", "a or b", or "a, b, or c".
func joinAlternatives(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
