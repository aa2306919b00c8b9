// Package blockchain checks job payment transactions against public
// block-explorer APIs. Verification is advisory: failures surface as a
// structured result, never as an error the payment flow has to unwind.
package blockchain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"
)

type Network string

const (
	NetworkSepolia Network = "sepolia"
	NetworkMumbai  Network = "mumbai"
)

// status endpoints per supported test network
var endpoints = map[Network]string{
	NetworkSepolia: "https://api-sepolia.etherscan.io/api",
	NetworkMumbai:  "https://api-testnet.polygonscan.com/api",
}

// ValidNetwork reports whether n names a supported network.
func ValidNetwork(n Network) bool {
	_, ok := endpoints[n]
	return ok
}

type Reason string

const (
	ReasonMissingParams Reason = "missing_params"
	ReasonRequestFailed Reason = "request_failed"
)

// Result is the outcome of a verification attempt. Raw carries the provider
// response for auditing when a call was made.
type Result struct {
	OK     bool            `json:"ok"`
	Raw    json.RawMessage `json:"raw,omitempty"`
	Reason Reason          `json:"reason,omitempty"`
}

type statusResponse struct {
	Result struct {
		IsError string `json:"isError"`
	} `json:"result"`
}

// Verifier issues a single status lookup per call. The API key is injected at
// construction; no retries, the caller decides whether to re-invoke.
type Verifier struct {
	client *http.Client
	apiKey string
	logger *slog.Logger

	// overridable for tests
	endpoints map[Network]string
}

func NewVerifier(apiKey string, timeout time.Duration, logger *slog.Logger) *Verifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		client:    &http.Client{Timeout: timeout},
		apiKey:    apiKey,
		logger:    logger,
		endpoints: endpoints,
	}
}

// SetTransport replaces the HTTP transport. Test hook.
func (v *Verifier) SetTransport(rt http.RoundTripper) {
	v.client.Transport = rt
}

// SetEndpoint points a network at a different base URL. Test hook.
func (v *Verifier) SetEndpoint(n Network, base string) {
	eps := make(map[Network]string, len(v.endpoints))
	for k, val := range v.endpoints {
		eps[k] = val
	}
	eps[n] = base
	v.endpoints = eps
}

// Verify checks the transaction status flag for txHash on the given network.
// OK is true only when the provider reports isError == "0". Missing hash or
// key short-circuits without touching the network.
func (v *Verifier) Verify(ctx context.Context, txHash string, network Network) Result {
	if txHash == "" || v.apiKey == "" {
		return Result{OK: false, Reason: ReasonMissingParams}
	}

	base, ok := v.endpoints[network]
	if !ok {
		return Result{OK: false, Reason: ReasonMissingParams}
	}

	q := url.Values{}
	q.Set("module", "transaction")
	q.Set("action", "getstatus")
	q.Set("txhash", txHash)
	q.Set("apikey", v.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return Result{OK: false, Reason: ReasonRequestFailed}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("explorer request failed", slog.String("network", string(network)), slog.Any("err", err))
		return Result{OK: false, Reason: ReasonRequestFailed}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("explorer bad response", slog.String("network", string(network)), slog.Int("status", resp.StatusCode))
		return Result{OK: false, Reason: ReasonRequestFailed}
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{OK: false, Reason: ReasonRequestFailed}
	}

	return Result{OK: parsed.Result.IsError == "0", Raw: body}
}
