// pkg/archive/digest.go

package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is the BLAKE3-256 of an archive file.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestFile hashes the file at path.
func DigestFile(path string) (Digest, error) {
	var digest Digest

	file, err := os.Open(path)
	if err != nil {
		return digest, fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return digest, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}
