package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// HashFile returns the hex SHA-256 of a file's content
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", eris.Wrapf(err, "failed to hash %s", path)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
