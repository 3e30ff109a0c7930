// Package khash supplies ready-made hash functions for the key types
// conhashmap.NewAppendOnly and conhashmap.NewRemovable most commonly see,
// so callers do not have to write their own.
//
// String keys are hashed with FNV-1a and integer keys with the SplitMix64
// finalizer — both fast, allocation-free, and good enough distribution for
// bucket placement, which unlike a security hash has no adversarial-input
// requirement within this library's scope.
package khash

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// String hashes a string key with FNV-1a, indexing the string's bytes
// directly rather than going through hash/fnv — a []byte(k) conversion
// to feed hash.Hash64.Write would copy the key on every call.
func String(k string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(k); i++ {
		h ^= uint64(k[i])
		h *= fnvPrime64
	}
	return h
}

// Int64 mixes a 64-bit integer key with the SplitMix64 finalizer —
// faster than routing an 8-byte key through FNV-1a and just as well
// distributed for bucket placement.
func Int64(k int64) uint64 {
	return mix(uint64(k))
}

// Int hashes a platform int key.
func Int(k int) uint64 {
	return mix(uint64(k))
}

// Uint64 mixes a uint64 key with the SplitMix64 finalizer.
func Uint64(k uint64) uint64 {
	return mix(k)
}

// mix is the SplitMix64 finalizer (Sebastiano Vigna), used to spread a
// narrow or sequential integer key across the full 64-bit range before
// it is reduced mod bucketCount.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
