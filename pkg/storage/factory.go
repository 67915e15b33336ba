/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"context"
	"fmt"

	"github.com/arielsmarin/straty-backend-stable/pkg/config"
)

const (
	BackendR2    = "r2"
	BackendLocal = "local"
)

// New builds the configured backend. An empty backend name defaults to
// r2; anything else unknown is a fatal configuration error.
func New(ctx context.Context, backend string) (Interface, error) {
	switch backend {
	case "", BackendR2:
		return NewR2Client(ctx)
	case BackendLocal:
		return NewLocalClient(config.GetCacheRoot(), config.GetPublicUrlBase())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
