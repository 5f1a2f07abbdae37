//go:build !windows
// +build !windows

package manifest

import "context"

func Register(ctx context.Context, manifestPath, resourceFile string) error {
	return ErrNotSupported
}

func Unregister(ctx context.Context, manifestPath string) error {
	return ErrNotSupported
}
