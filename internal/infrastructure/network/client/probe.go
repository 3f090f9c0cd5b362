package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var probeBody = []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`)

type probeResponse struct {
	Result *hexutil.Big `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Prober checks whether a JSON-RPC wallet endpoint is present.
type Prober interface {
	// Probe returns the chain ID reported by the endpoint, or 0 when the endpoint
	// answered but did not report one.
	Probe(ctx context.Context, endpoint string) (uint64, error)
}

// HTTPProber probes an endpoint with a single eth_chainId request.
type HTTPProber struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPProber creates a prober with the given default timeout.
func NewHTTPProber(timeout time.Duration, logger *zap.Logger) *HTTPProber {
	return &HTTPProber{
		client:  &fasthttp.Client{},
		timeout: timeout,
		logger:  logger.Named("WalletProbe"),
	}
}

// Probe implements Prober. Any well-formed JSON-RPC reply counts as present, including
// an error reply: some wallets refuse eth_chainId before authorization.
func (p *HTTPProber) Probe(ctx context.Context, endpoint string) (uint64, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBodyRaw(probeBody)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		p.logger.Debug("Wallet endpoint did not answer", zap.String("endpoint", endpoint), zap.Error(err))
		return 0, fmt.Errorf("wallet endpoint %s unreachable: %w", endpoint, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("wallet endpoint %s answered with status %d", endpoint, resp.StatusCode())
	}

	var decoded probeResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return 0, fmt.Errorf("wallet endpoint %s did not answer JSON-RPC: %w", endpoint, err)
	}
	if decoded.Error != nil {
		p.logger.Debug("Wallet endpoint refused eth_chainId",
			zap.String("endpoint", endpoint), zap.Int("code", decoded.Error.Code), zap.String("message", decoded.Error.Message))
		return 0, nil
	}
	if decoded.Result == nil {
		return 0, nil
	}
	return decoded.Result.ToInt().Uint64(), nil
}
