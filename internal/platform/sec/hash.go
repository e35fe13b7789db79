// Copyright (c) 2026 Hellomouse. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// # Password Security (Bcrypt)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {

	// Default cost (10) provides a good balance between security and performance
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)

	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {

	// Bcrypt handles salt automatically. comparison is constant-time to prevent timing attacks.
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))

	return err == nil
}
