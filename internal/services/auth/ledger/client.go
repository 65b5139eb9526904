// Package ledger reads the AuthStorage contract that holds each user's
// encrypted passkeys.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const authStorageABI = `[{
	"inputs": [{"internalType": "address", "name": "user", "type": "address"}],
	"name": "getPasskeys",
	"outputs": [{
		"components": [
			{"internalType": "string", "name": "deviceType", "type": "string"},
			{"internalType": "uint256", "name": "counter", "type": "uint256"},
			{"internalType": "string", "name": "credentialId", "type": "string"},
			{"internalType": "string", "name": "encryptedPasskey", "type": "string"}
		],
		"internalType": "struct AuthStorage.Passkey[]",
		"name": "",
		"type": "tuple[]"
	}],
	"stateMutability": "view",
	"type": "function"
}]`

// Record is one stored passkey row as the contract returns it.
type Record struct {
	DeviceType       string
	Counter          *big.Int
	CredentialId     string
	EncryptedPasskey string
}

// Client is a read-only handle on the AuthStorage contract.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
}

// Dial connects to the chain RPC endpoint and binds the AuthStorage contract.
func Dial(ctx context.Context, rpcURL, contractAddr string) (*Client, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddr)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}

	parsed, err := parseABI()
	if err != nil {
		eth.Close()
		return nil, err
	}

	address := common.HexToAddress(contractAddr)
	return &Client{
		eth:      eth,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
		address:  address,
	}, nil
}

func parseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(authStorageABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse contract abi: %w", err)
	}
	return parsed, nil
}

// GetPasskeys fetches the passkey rows stored for user. The caller address
// is used as the read's from address; reads cost no gas, so any pool wallet
// serves. Contract failures are classified before they return.
func (c *Client) GetPasskeys(ctx context.Context, caller, user common.Address) ([]Record, error) {
	opts := &bind.CallOpts{From: caller, Context: ctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "getPasskeys", user); err != nil {
		return nil, Classify(err)
	}
	return *abi.ConvertType(out[0], new([]Record)).(*[]Record), nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
