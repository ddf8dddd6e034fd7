package eas

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The registered schema layout, bit-exact and fixed:
// uint16 scaledScore, uint8[] metricRatings, string sourceRef, string communityContext.
var payloadArgs = mustPayloadArgs()

func mustPayloadArgs() abi.Arguments {
	uint16Type, err := abi.NewType("uint16", "", nil)
	if err != nil {
		panic(err)
	}
	uint8SliceType, err := abi.NewType("uint8[]", "", nil)
	if err != nil {
		panic(err)
	}
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "scaledScore", Type: uint16Type},
		{Name: "metricRatings", Type: uint8SliceType},
		{Name: "sourceRef", Type: stringType},
		{Name: "communityContext", Type: stringType},
	}
}

// EncodePayload serializes the credential fields per the schema's canonical
// ABI layout. The byte string becomes the opaque data of the attest call.
func EncodePayload(scaledScore uint16, metricRatings []uint8, sourceRef, communityContext string) ([]byte, error) {
	packed, err := payloadArgs.Pack(scaledScore, metricRatings, sourceRef, communityContext)
	if err != nil {
		return nil, fmt.Errorf("encode attestation payload: %w", err)
	}
	return packed, nil
}

// DecodePayload is the inverse of EncodePayload, used by tests and tooling.
func DecodePayload(data []byte) (scaledScore uint16, metricRatings []uint8, sourceRef, communityContext string, err error) {
	values, err := payloadArgs.Unpack(data)
	if err != nil {
		return 0, nil, "", "", fmt.Errorf("decode attestation payload: %w", err)
	}
	if len(values) != 4 {
		return 0, nil, "", "", fmt.Errorf("decode attestation payload: expected 4 fields, got %d", len(values))
	}
	scaledScore, _ = values[0].(uint16)
	metricRatings, _ = values[1].([]uint8)
	sourceRef, _ = values[2].(string)
	communityContext, _ = values[3].(string)
	return scaledScore, metricRatings, sourceRef, communityContext, nil
}
