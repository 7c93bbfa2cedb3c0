package types

import (
	"github.com/crytic/medusa-geth/common/hexutil"
)

// Bytecode wraps a hex-encoded bytecode payload within a ContractType.
type Bytecode struct {
	// Bytecode describes the payload as a 0x-prefixed hex string.
	Bytecode string `json:"bytecode,omitempty"`
}

// ContractType represents a single compiled contract in the shape consumed by package manifests:
// the contract's qualified name, the source it was compiled from, its normalized ABI, and its
// two compiler outputs encoded as hex payloads.
type ContractType struct {
	// ContractName describes the dot-separated qualified name of the contract, derived from its
	// source identifier.
	ContractName string `json:"contractName"`

	// SourceId describes the project-relative path of the source the contract was compiled from.
	SourceId string `json:"sourceId,omitempty"`

	// Abi describes the contract's ABI entries with constructors already normalized.
	Abi []ABIEntry `json:"abi"`

	// DeploymentBytecode describes the hex-encoded first-stage compiler output.
	DeploymentBytecode *Bytecode `json:"deploymentBytecode,omitempty"`

	// RuntimeBytecode describes the hex-encoded second-stage compiler output.
	RuntimeBytecode *Bytecode `json:"runtimeBytecode,omitempty"`
}

// EncodeBytecodeText hex-encodes the raw text content of a compiler output file into a Bytecode
// payload suitable for embedding in a ContractType.
func EncodeBytecodeText(text string) *Bytecode {
	return &Bytecode{Bytecode: hexutil.Encode([]byte(text))}
}

// DecodeDeploymentBytecode decodes the contract's deployment bytecode payload back into the raw
// text emitted by the first compilation stage.
func (c *ContractType) DecodeDeploymentBytecode() ([]byte, error) {
	if c.DeploymentBytecode == nil {
		return nil, nil
	}
	return hexutil.Decode(c.DeploymentBytecode.Bytecode)
}

// DecodeRuntimeBytecode decodes the contract's runtime bytecode payload back into the raw text
// emitted by the second compilation stage.
func (c *ContractType) DecodeRuntimeBytecode() ([]byte, error) {
	if c.RuntimeBytecode == nil {
		return nil, nil
	}
	return hexutil.Decode(c.RuntimeBytecode.Bytecode)
}
