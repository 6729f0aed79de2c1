package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
	logger     *slog.Logger
}

// StatusError is a non-2xx mirror node response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror node request failed with status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		switch network {
		case shared.NetworkMainnet:
			baseURL = "https://mainnet-public.mirrornode.hedera.com"
		case shared.NetworkLocal:
			baseURL = "http://localhost:5551"
		default:
			baseURL = "https://testnet.mirrornode.hedera.com"
		}
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}
	baseURL = strings.TrimRight(parsedBaseURL.String(), "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    headers,
		logger:     logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetContractResult fetches the result of a mined transaction. It returns nil
// when the mirror node has no record of hash.
func (c *Client) GetContractResult(ctx context.Context, hash common.Hash) (*ContractResult, error) {
	if hash == (common.Hash{}) {
		return nil, fmt.Errorf("transaction hash is required")
	}

	var result ContractResult
	path := fmt.Sprintf("/api/v1/contracts/results/%s", hash.Hex())
	if err := c.getJSON(ctx, path, &result); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// Receipt rebuilds the ledger receipt for hash from its contract result so it
// can be fed to the event correlator. An unknown hash wraps ethereum.NotFound.
// Malformed log entries are dropped from the receipt and logged.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	result, err := c.GetContractResult(ctx, hash)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("mirror node has no contract result for %s: %w", hash.Hex(), ethereum.NotFound)
	}
	receipt, skipped, err := ToReceipt(*result)
	if err != nil {
		return nil, err
	}
	for _, entry := range skipped {
		c.logger.Warn("skipping malformed mirror log", "tx_hash", hash.Hex(), "index", entry.Index, "error", entry.Err)
	}
	return receipt, nil
}

// GetContractLogs lists logs emitted by contract, following pagination links.
func (c *Client) GetContractLogs(
	ctx context.Context,
	contract common.Address,
	options LogQueryOptions,
) ([]ContractLog, error) {
	if contract == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}

	values := url.Values{}
	if options.Timestamp != "" {
		values.Set("timestamp", options.Timestamp)
	}
	if options.Topic0 != "" {
		values.Set("topic0", options.Topic0)
	}
	if options.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	if options.Order != "" {
		values.Set("order", options.Order)
	}

	endpoint := fmt.Sprintf("/api/v1/contracts/%s/results/logs", contract.Hex())
	if encoded := values.Encode(); encoded != "" {
		endpoint = fmt.Sprintf("%s?%s", endpoint, encoded)
	}

	result := make([]ContractLog, 0)
	next := endpoint
	for next != "" {
		var page contractLogsResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		result = append(result, page.Logs...)
		next = page.Links.Next
	}
	return result, nil
}

// ToReceipt converts a contract result into a receipt. Block hashes longer
// than 32 bytes are truncated to their leading 32 bytes. Log entries that
// cannot be converted are left out of the receipt and reported as skipped.
func ToReceipt(result ContractResult) (*types.Receipt, []SkippedLog, error) {
	if !common.IsHexAddress(result.Address) && result.Address != "" {
		return nil, nil, fmt.Errorf("invalid contract address %q", result.Address)
	}
	txHash := common.HexToHash(result.Hash)
	blockHash, err := leadingHash(result.BlockHash)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid block hash: %w", err)
	}

	receipt := &types.Receipt{
		Status:            types.ReceiptStatusFailed,
		TxHash:            txHash,
		GasUsed:           uint64(result.GasUsed),
		CumulativeGasUsed: uint64(result.BlockGasUsed),
		BlockHash:         blockHash,
		BlockNumber:       big.NewInt(result.BlockNumber),
		TransactionIndex:  uint(result.TransactionIndex),
		Logs:              make([]*types.Log, 0, len(result.Logs)),
	}
	if result.Type != nil {
		receipt.Type = uint8(*result.Type)
	}
	if result.Succeeded() {
		receipt.Status = types.ReceiptStatusSuccessful
	}

	var skipped []SkippedLog
	for _, entry := range result.Logs {
		log, err := ToLog(entry)
		if err != nil {
			skipped = append(skipped, SkippedLog{Index: entry.Index, Err: err})
			continue
		}
		log.TxHash = txHash
		log.BlockHash = blockHash
		log.BlockNumber = uint64(result.BlockNumber)
		log.TxIndex = uint(result.TransactionIndex)
		receipt.Logs = append(receipt.Logs, log)
	}
	return receipt, skipped, nil
}

// ToLog converts one mirror node log entry.
func ToLog(entry ContractLog) (*types.Log, error) {
	if !common.IsHexAddress(entry.Address) {
		return nil, fmt.Errorf("log %d has invalid address %q", entry.Index, entry.Address)
	}
	data := []byte{}
	if trimmed := strings.TrimSpace(entry.Data); trimmed != "" && trimmed != "0x" {
		decoded, err := hexutil.Decode(trimmed)
		if err != nil {
			return nil, fmt.Errorf("log %d has invalid data: %w", entry.Index, err)
		}
		data = decoded
	}
	topics := make([]common.Hash, 0, len(entry.Topics))
	for _, topic := range entry.Topics {
		decoded, err := hexutil.Decode(topic)
		if err != nil || len(decoded) > common.HashLength {
			return nil, fmt.Errorf("log %d has invalid topic %q", entry.Index, topic)
		}
		topics = append(topics, common.BytesToHash(decoded))
	}
	blockHash, err := leadingHash(entry.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("log %d has invalid block hash: %w", entry.Index, err)
	}
	return &types.Log{
		Address:     common.HexToAddress(entry.Address),
		Topics:      topics,
		Data:        data,
		Index:       uint(entry.Index),
		TxHash:      common.HexToHash(entry.TransactionHash),
		TxIndex:     uint(entry.TransactionIndex),
		BlockNumber: uint64(entry.BlockNumber),
		BlockHash:   blockHash,
	}, nil
}

func leadingHash(value string) (common.Hash, error) {
	if strings.TrimSpace(value) == "" {
		return common.Hash{}, nil
	}
	decoded, err := hexutil.Decode(value)
	if err != nil {
		return common.Hash{}, err
	}
	if len(decoded) > common.HashLength {
		decoded = decoded[:common.HashLength]
	}
	return common.BytesToHash(decoded), nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	requestURL := c.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return shared.NewError(shared.ErrorCodeTransientRPC, "mirror node request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return shared.NewError(shared.ErrorCodeTransientRPC, "failed to read mirror node response", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
		if response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500 {
			return shared.NewError(shared.ErrorCodeTransientRPC, "mirror node unavailable", statusErr)
		}
		return statusErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}

	path := pathOrURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}
