// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"

	autherrors "playerauth/cli/internal/errors"
)

// GetEndpoints returns the manifest for src, using the RAM cache if available.
// Fetch failures are reported as transport errors.
func GetEndpoints(ctx context.Context, src Source) (*Manifest, error) {
	if cached := GetCached(src.URL); cached != nil {
		return cached, nil
	}

	m, err := fetchFromServer(ctx, src)
	if err != nil {
		return nil, autherrors.Wrap(autherrors.Transport, "cannot load identity service endpoints", err).WithOp("manifest")
	}
	SetCached(src.URL, m)
	return m, nil
}
