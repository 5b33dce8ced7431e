package capsule

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("capsule: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a capsule to canonical CBOR bytes.
func Marshal(c *Capsule) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// Unmarshal deserializes a capsule from CBOR bytes.
func Unmarshal(data []byte) (*Capsule, error) {
	var c Capsule
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("capsule: unmarshal: %w", err)
	}
	return &c, nil
}

// ContentHash returns the SHA-256 of the capsule's canonical encoding.
// Equal capsules hash equal; any change to code, pool or metadata moves
// the hash.
func (c *Capsule) ContentHash() ([32]byte, error) {
	data, err := Marshal(c)
	if err != nil {
		return [32]byte{}, fmt.Errorf("capsule: hash: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Verify recomputes the capsule's content hash and checks it against the
// declared one.
func (c *Capsule) Verify(declared [32]byte) error {
	computed, err := c.ContentHash()
	if err != nil {
		return err
	}
	if computed != declared {
		return fmt.Errorf("capsule: hash mismatch: declared %x, computed %x", declared, computed)
	}
	return nil
}
