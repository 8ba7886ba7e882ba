package sales

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const MintLabel = "Mint"

type NameResolver interface {
	LookupAddress(ctx context.Context, address common.Address) (string, error)
}

// ShortenAddress keeps the first and last five characters of a 0x value.
// Anything else, including values too short to shorten, is returned as is.
func ShortenAddress(address string) string {
	if !strings.HasPrefix(address, "0x") || len(address) < 10 {
		return address
	}
	return address[:5] + "..." + address[len(address)-5:]
}

type IdentityResolver struct {
	names           NameResolver
	useNames        bool
	includeFreeMint bool
}

// NewIdentityResolver builds a resolver. names may be nil when useNames is
// false.
func NewIdentityResolver(names NameResolver, useNames, includeFreeMint bool) *IdentityResolver {
	return &IdentityResolver{
		names:           names,
		useNames:        useNames && names != nil,
		includeFreeMint: includeFreeMint,
	}
}

// Label renders one party of a transfer. It never fails: lookups that miss
// or error fall back to the shortened address.
func (r *IdentityResolver) Label(ctx context.Context, address common.Address, isMint bool) string {
	if isMint && r.includeFreeMint {
		return MintLabel
	}
	short := ShortenAddress(strings.ToLower(address.Hex()))
	if !r.useNames {
		return short
	}
	name, err := r.names.LookupAddress(ctx, address)
	if err != nil || name == "" {
		zap.L().Debug("Reverse name lookup missed", zap.String("address", address.Hex()), zap.Error(err))
		return short
	}
	return name
}
