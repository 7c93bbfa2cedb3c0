package types

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// ABIEntry describes a single entry of a Cairo contract ABI. Entry shapes vary across compiler
// releases (functions, events, structs and constructors all carry different key sets), so entries
// are modeled as generic key-value mappings rather than a rigid structure. This keeps unknown keys
// intact when entries are re-serialized into a contract type.
type ABIEntry map[string]any

// Name returns the entry's "name" value, or an empty string if the entry does not carry one.
func (e ABIEntry) Name() string {
	if name, ok := e["name"].(string); ok {
		return name
	}
	return ""
}

// Type returns the entry's "type" value, or an empty string if the entry does not carry one.
func (e ABIEntry) Type() string {
	if entryType, ok := e["type"].(string); ok {
		return entryType
	}
	return ""
}

// NormalizeConstructors rewrites constructor entries in the provided ABI in place and returns the
// same slice. Cairo 1 emits a contract's constructor as a regular method entry named "constructor",
// while the contract-type schema expects a "type" tag and no "name" key. Entries which are not
// constructors are left untouched, and normalizing an already-normalized ABI is a no-op.
func NormalizeConstructors(entries []ABIEntry) []ABIEntry {
	// Loop for each entry and rewrite any constructor in place.
	for _, entry := range entries {
		if entry.Name() == "constructor" {
			delete(entry, "name")
			entry["type"] = "constructor"
		}
	}
	return entries
}

// EntryPointSelector computes the Starknet entry point selector for a given method name. The
// selector is the keccak-256 digest of the name, masked to its low 250 bits so it fits the
// Starknet field element range.
func EntryPointSelector(methodName string) *uint256.Int {
	// Hash the method name with the legacy keccak-256 variant used by Starknet.
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(methodName))
	digest := hasher.Sum(nil)

	// Mask the top six bits so only 250 bits remain.
	digest[0] &= 0x03

	return new(uint256.Int).SetBytes(digest)
}
