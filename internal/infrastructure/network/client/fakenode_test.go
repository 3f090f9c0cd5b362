package client

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
)

type rpcRequest struct {
	ID     jsoniter.RawMessage   `json:"id"`
	Method string                `json:"method"`
	Params []jsoniter.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callArgs struct {
	To    string        `json:"to"`
	Input hexutil.Bytes `json:"input"`
	Data  hexutil.Bytes `json:"data"`
}

type fakeToken struct {
	balance  *big.Int
	decimals uint8
	symbol   string
	revert   bool
}

// fakeNode is a minimal JSON-RPC endpoint acting as both wallet and node.
type fakeNode struct {
	t           *testing.T
	chainID     uint64
	accounts    []string
	accountsErr *rpcError
	balance     *big.Int
	tokens      map[string]fakeToken

	mu        sync.Mutex
	calls     map[string]int
	lastOwner common.Address
}

func newFakeNode(t *testing.T) *fakeNode {
	return &fakeNode{
		t:       t,
		chainID: 1,
		balance: big.NewInt(0),
		tokens:  make(map[string]fakeToken),
		calls:   make(map[string]int),
	}
}

func (n *fakeNode) start() *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	n.t.Cleanup(srv.Close)
	return srv
}

func (n *fakeNode) count(key string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[key]
}

func (n *fakeNode) record(key string) {
	n.mu.Lock()
	n.calls[key]++
	n.mu.Unlock()
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	n.record(req.Method)

	result, rpcErr := n.dispatch(req)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) dispatch(req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "eth_chainId":
		return hexutil.EncodeUint64(n.chainID), nil
	case "eth_requestAccounts":
		if n.accountsErr != nil {
			return nil, n.accountsErr
		}
		if n.accounts == nil {
			return []string{}, nil
		}
		return n.accounts, nil
	case "eth_getBalance":
		return hexutil.EncodeBig(n.balance), nil
	case "eth_call":
		return n.call(req)
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

func (n *fakeNode) call(req rpcRequest) (any, *rpcError) {
	var args callArgs
	if err := json.Unmarshal(req.Params[0], &args); err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}
	data := args.Input
	if len(data) == 0 {
		data = args.Data
	}
	token, ok := n.tokens[strings.ToLower(args.To)]
	if !ok {
		return "0x", nil
	}
	if token.revert {
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	}

	if len(data) < 4 {
		return nil, &rpcError{Code: -32602, Message: "missing method selector"}
	}
	parsed := erc20()
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}
	n.record("eth_call:" + method.Name)

	var out []byte
	switch method.Name {
	case "balanceOf":
		vals, uerr := method.Inputs.Unpack(data[4:])
		if uerr == nil {
			n.mu.Lock()
			n.lastOwner = vals[0].(common.Address)
			n.mu.Unlock()
		}
		out, err = method.Outputs.Pack(token.balance)
	case "decimals":
		out, err = method.Outputs.Pack(token.decimals)
	case "symbol":
		out, err = method.Outputs.Pack(token.symbol)
	}
	if err != nil {
		n.t.Errorf("pack %s: %v", method.Name, err)
		return nil, &rpcError{Code: -32603, Message: err.Error()}
	}
	return hexutil.Encode(out), nil
}
