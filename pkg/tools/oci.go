/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package tools

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
)

// ImageReference joins image and tag and checks the result is a valid
// registry reference. Short names such as "ubuntu" resolve against
// Docker Hub.
func ImageReference(image, tag string) (string, error) {
	ref := image
	if tag != "" {
		ref = image + ":" + tag
	}

	if _, err := name.ParseReference(ref); err != nil {
		return "", fmt.Errorf("invalid image name %q: %w", ref, err)
	}

	return ref, nil
}
