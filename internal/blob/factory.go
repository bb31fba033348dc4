package blob

import (
	"context"
	"fmt"
)

// Options selects and configures a blob backend explicitly.
type Options struct {
	Driver Driver
	// Root is the directory used by the fs driver.
	Root string
	S3   S3Config
}

// Open selects a Store implementation from explicit options. An empty driver
// defaults to the filesystem.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(opts.Root)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
