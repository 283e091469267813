package bridge

import (
	"fmt"
)

// Selector returns the routing string of a transfer on the signing network:
//   - "<asset>/from<from>" when the asset goes back to its origin chain (burn),
//   - "<asset>/to<to>" when it leaves its origin chain (lock),
//   - "<asset>/from<from>_to<to>" between two foreign chains.
func Selector(asset, origin, from, to string) string {
	switch {
	case origin == to:
		return fmt.Sprintf("%s/from%s", asset, from)
	case origin == from:
		return fmt.Sprintf("%s/to%s", asset, to)
	default:
		return fmt.Sprintf("%s/from%s_to%s", asset, from, to)
	}
}
