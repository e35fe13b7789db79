// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package sessionkey derives the secret that backs every signed session
cookie.

On first run it generates 64 random bytes and persists them to disk; on
every subsequent run it reads the same file back. There is no key rotation
and no KDF step beyond using the bytes directly.
*/
package sessionkey

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
)

// Load reads the session-signing secret from constants.SessionKeyFile,
// generating and persisting one if the file does not yet exist.
func Load() ([]byte, error) {
	contents, err := os.ReadFile(constants.SessionKeyFile)
	if err == nil {
		return contents, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("sessionkey: reading %s: %w", constants.SessionKeyFile, err)
	}

	key := make([]byte, constants.SessionKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("sessionkey: generating key: %w", err)
	}

	if err := os.WriteFile(constants.SessionKeyFile, key, 0600); err != nil {
		return nil, fmt.Errorf("sessionkey: persisting %s: %w", constants.SessionKeyFile, err)
	}

	return key, nil
}
