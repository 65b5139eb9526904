package ledger

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
)

// userNotRegisteredReason is the revert reason the contract emits for an
// address with no account. It is the only reason given special handling; all
// others stay opaque.
const userNotRegisteredReason = "AuthStorage: user not registered"

// Classify normalizes a contract call failure. A revert carrying the
// not-registered reason becomes a user-not-found error; anything else passes
// through untouched for the caller to map.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if revertReason(err) == userNotRegisteredReason {
		return apperrors.Wrap(apperrors.CodeUserNotFound, "user is not registered", err)
	}
	return err
}

// revertReason extracts the human-readable reason from a revert, if the error
// carries one. Nodes differ in how they surface it: some attach the ABI
// encoded revert data, others only embed the reason in the message.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(data); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return reason
				}
			}
		}
	}
	if strings.Contains(err.Error(), userNotRegisteredReason) {
		return userNotRegisteredReason
	}
	return ""
}
