// Package contenthash provides the content hashers used to derive
// content-addressed field names.
package contenthash

import (
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"

	"github.com/wippyai/rodata"
	"github.com/wippyai/rodata/errors"
)

// Hasher names accepted by Lookup.
const (
	NameSHA256  = "sha256"
	NameBLAKE3  = "blake3"
	NameBLAKE2b = "blake2b"
)

// SHA256 returns a hasher producing the 32-byte SHA2-256 digest.
func SHA256() rodata.Hasher {
	return rodata.HasherFunc(sha256Sum)
}

// BLAKE3 returns a hasher producing a 32-byte BLAKE3 digest.
func BLAKE3() rodata.Hasher {
	return rodata.HasherFunc(func(data []byte) []byte {
		sum := blake3.Sum256(data)
		return sum[:]
	})
}

// BLAKE2b returns a hasher producing a 32-byte BLAKE2b-256 digest.
func BLAKE2b() rodata.Hasher {
	return rodata.HasherFunc(func(data []byte) []byte {
		sum := blake2b.Sum256(data)
		return sum[:]
	})
}

var hashers = map[string]func() rodata.Hasher{
	NameSHA256:  SHA256,
	NameBLAKE3:  BLAKE3,
	NameBLAKE2b: BLAKE2b,
}

// Lookup returns the hasher registered under name.
func Lookup(name string) (rodata.Hasher, error) {
	ctor, ok := hashers[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseHash, "hasher", name)
	}
	return ctor(), nil
}

// Names returns the registered hasher names in sorted order.
func Names() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CID returns the CIDv1 (raw codec, sha2-256) of data. It is used as a
// stable cross-tool identifier when listing blobs and is independent of the
// hasher the container was configured with.
func CID(data []byte) string {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only fails for unknown codes or bad lengths.
		return ""
	}
	return cid.NewCidV1(cid.Raw, mh).String()
}

func sha256Sum(data []byte) []byte {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		panic(errors.Wrap(errors.PhaseHash, errors.KindInvariant, err, "sha2-256 multihash"))
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		panic(errors.Wrap(errors.PhaseHash, errors.KindInvariant, err, "decode sha2-256 multihash"))
	}
	return dec.Digest
}
