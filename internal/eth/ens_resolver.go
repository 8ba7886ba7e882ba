package eth

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNameNotFound = errors.New("no reverse record")

var EnsRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var ensAbi abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(`[
  {"inputs": [{"name": "node", "type": "bytes32"}], "name": "resolver", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "node", "type": "bytes32"}], "name": "name", "outputs": [{"name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "node", "type": "bytes32"}], "name": "addr", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`))
	if err != nil {
		panic("failed to parse ENS ABI: " + err.Error())
	}
	ensAbi = parsed
}

// EnsReverseResolver resolves addresses to their primary ENS name. A name is
// only returned when it resolves forward to the same address.
type EnsReverseResolver struct {
	caller   ContractCaller
	registry common.Address
}

func NewEnsReverseResolver(caller ContractCaller) *EnsReverseResolver {
	return &EnsReverseResolver{caller: caller, registry: EnsRegistryAddress}
}

func (r *EnsReverseResolver) LookupAddress(ctx context.Context, address common.Address) (string, error) {
	reverseNode := NameHash(strings.ToLower(hex.EncodeToString(address.Bytes())) + ".addr.reverse")
	reverseResolver, err := r.resolverOf(ctx, reverseNode)
	if err != nil {
		return "", err
	}

	var name string
	if err := r.call(ctx, reverseResolver, "name", reverseNode, &name); err != nil {
		return "", errors.Wrap(err, "reverse name")
	}
	if name == "" {
		return "", ErrNameNotFound
	}

	forwardNode := NameHash(name)
	forwardResolver, err := r.resolverOf(ctx, forwardNode)
	if err != nil {
		return "", err
	}
	var resolved common.Address
	if err := r.call(ctx, forwardResolver, "addr", forwardNode, &resolved); err != nil {
		return "", errors.Wrap(err, "forward address")
	}
	if resolved != address {
		return "", errors.Wrapf(ErrNameNotFound, "%s resolves to %s", name, resolved.Hex())
	}
	return name, nil
}

func (r *EnsReverseResolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var resolver common.Address
	if err := r.call(ctx, r.registry, "resolver", node, &resolver); err != nil {
		return common.Address{}, errors.Wrap(err, "registry resolver")
	}
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNameNotFound
	}
	return resolver, nil
}

func (r *EnsReverseResolver) call(ctx context.Context, to common.Address, method string, node common.Hash, out interface{}) error {
	input, err := ensAbi.Pack(method, node)
	if err != nil {
		return err
	}
	output, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return err
	}
	if len(output) == 0 {
		return ErrNameNotFound
	}
	return ensAbi.UnpackIntoInterface(out, method, output)
}

// NameHash implements the EIP-137 namehash.
func NameHash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}
