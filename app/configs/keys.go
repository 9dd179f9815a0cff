package configs

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gorilla/securecookie"
)

const generatedKeysFile = ".env.new_keys"

// GenerateAndPrintKeys creates a fresh JWT signing secret, prints it and
// writes it to .env.new_keys for copying into .env.
func GenerateAndPrintKeys(out io.Writer) error {
	secret := securecookie.GenerateRandomKey(64)
	if secret == nil {
		return fmt.Errorf("could not generate jwt secret")
	}

	secretBase64 := base64.URLEncoding.EncodeToString(secret)

	fmt.Fprintln(out, "================================================")
	fmt.Fprintln(out, "Generated keys:")
	fmt.Fprintf(out, "JWT_SECRET=%s\n", secretBase64)
	fmt.Fprintln(out, "================================================")

	fullPath, err := filepath.Abs(generatedKeysFile)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", generatedKeysFile, err)
	}

	file, err := os.Create(generatedKeysFile)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", generatedKeysFile, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "JWT_SECRET=%s\n", secretBase64); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", generatedKeysFile, err)
	}

	fmt.Fprintf(out, "Keys have been written to %s\n", fullPath)
	fmt.Fprintln(out, "Regenerating the secret invalidates every issued token.")
	return nil
}
