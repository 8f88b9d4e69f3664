//go:build !windows

package loginitem

import "fmt"

func newRegistryStrategy(Options) (Strategy, error) {
	return nil, fmt.Errorf("%w: registry strategy requires windows", ErrUnsupported)
}
