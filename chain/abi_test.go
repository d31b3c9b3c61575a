package chain

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractABIsParse(t *testing.T) {
	nft, err := abi.JSON(strings.NewReader(pulseNFTABI))
	require.NoError(t, err)
	for _, method := range []string{"nextTokenId", "ownerOf", "tokenURI"} {
		_, ok := nft.Methods[method]
		assert.True(t, ok, "missing %s", method)
	}

	minter, err := abi.JSON(strings.NewReader(pulseMinterABI))
	require.NoError(t, err)
	buy, ok := minter.Methods["buyNft"]
	require.True(t, ok)
	require.Len(t, buy.Inputs, 2)
	assert.Equal(t, "uint256", buy.Inputs[0].Type.String())
	assert.Equal(t, "uint256", buy.Inputs[1].Type.String())
	_, ok = minter.Methods["nftPrice"]
	assert.True(t, ok)

	token, err := abi.JSON(strings.NewReader(pulseTokenABI))
	require.NoError(t, err)
	for _, method := range []string{"allowance", "approve"} {
		_, ok := token.Methods[method]
		assert.True(t, ok, "missing %s", method)
	}
}
