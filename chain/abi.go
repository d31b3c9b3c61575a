// Package chain wraps the deployed Pulse contracts behind typed Go
// bindings and exposes the node client used for liveness probes and
// transaction confirmation.
//
// The ABIs below are the subset of the deployed interfaces this backend
// actually calls; the full ABI JSON ships with the deployment artifacts.
package chain

// pulseNFTABI covers the ERC-721 reads used during synchronization.
const pulseNFTABI = `[
	{
		"inputs": [],
		"name": "nextTokenId",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "ownerOf",
		"outputs": [{"name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "tokenURI",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// pulseMinterABI covers the sale contract: the single global price and the
// purchase entry point.
const pulseMinterABI = `[
	{
		"inputs": [],
		"name": "nftPrice",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "tokenId", "type": "uint256"},
			{"name": "minReserved", "type": "uint256"}
		],
		"name": "buyNft",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// pulseTokenABI covers the ERC-20 payment token allowance flow.
const pulseTokenABI = `[
	{
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
