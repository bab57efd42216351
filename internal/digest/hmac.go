package digest

import "crypto/subtle"

const (
	innerPad = 0x36
	outerPad = 0x5c
)

// HMAC returns HMAC-SHA256(key, message) as defined in RFC 2104.
// Keys longer than BlockSize are hashed first; every key, including an empty
// one, is zero-padded to BlockSize.
func HMAC(key, message []byte) [Size]byte {
	var keyBlock [BlockSize]byte
	if len(key) > BlockSize {
		sum := Sum256(key)
		copy(keyBlock[:], sum[:])
	} else {
		copy(keyBlock[:], key)
	}

	inner := make([]byte, BlockSize+len(message))
	var outer [BlockSize + Size]byte
	for i, b := range keyBlock {
		inner[i] = b ^ innerPad
		outer[i] = b ^ outerPad
	}
	copy(inner[BlockSize:], message)

	innerSum := Sum256(inner)
	copy(outer[BlockSize:], innerSum[:])
	return Sum256(outer[:])
}

// Equal reports whether two MACs are equal without leaking timing
// information about where they differ.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
