package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPackageManifestReadWrite ensures a package manifest with sources and contract types can be
// written to disk and read back intact, including hex-encoded bytecode payloads.
func TestPackageManifestReadWrite(t *testing.T) {
	// Create a manifest carrying one source and one contract type with encoded bytecode.
	manifest := &PackageManifest{
		Manifest: "ethpm/3",
		Name:     "openzeppelin",
		Version:  "0.6.1",
		Sources: map[string]PackageSource{
			"src/account/Account.cairo": {Content: "#[account_contract]\nmod Account {}\n"},
		},
		ContractTypes: map[string]ContractType{
			"src.account.Account": {
				ContractName:       "src.account.Account",
				SourceId:           "src/account/Account.cairo",
				Abi:                []ABIEntry{{"name": "get_nonce", "type": "function"}},
				DeploymentBytecode: EncodeBytecodeText(`{"sierra_program": []}`),
			},
		},
	}

	// Write the manifest to a temporary file and read it back.
	manifestPath := filepath.Join(t.TempDir(), "manifest.json")
	assert.NoError(t, manifest.WriteToFile(manifestPath))
	loaded, err := ReadPackageManifestFromFile(manifestPath)
	assert.NoError(t, err)

	// Verify the loaded manifest matches what was written.
	assert.EqualValues(t, "openzeppelin", loaded.Name)
	assert.EqualValues(t, manifest.Sources["src/account/Account.cairo"].Content, loaded.Sources["src/account/Account.cairo"].Content)

	// Verify the contract type's bytecode payload decodes back to the original text.
	contractType := loaded.ContractTypes["src.account.Account"]
	decoded, err := contractType.DecodeDeploymentBytecode()
	assert.NoError(t, err)
	assert.EqualValues(t, `{"sierra_program": []}`, string(decoded))
}

// TestParsePackageManifestRejectsMalformed ensures malformed manifest data returns an error.
func TestParsePackageManifestRejectsMalformed(t *testing.T) {
	_, err := ParsePackageManifest([]byte("{not json"))
	assert.Error(t, err)
}
