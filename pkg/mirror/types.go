package mirror

// ContractResult is the mirror node view of one executed contract call.
type ContractResult struct {
	Address          string        `json:"address"`
	BlockGasUsed     int64         `json:"block_gas_used"`
	BlockHash        string        `json:"block_hash"`
	BlockNumber      int64         `json:"block_number"`
	ContractID       string        `json:"contract_id"`
	ErrorMessage     string        `json:"error_message"`
	From             string        `json:"from"`
	GasUsed          int64         `json:"gas_used"`
	Hash             string        `json:"hash"`
	Result           string        `json:"result"`
	Status           string        `json:"status"`
	Timestamp        string        `json:"timestamp"`
	To               string        `json:"to"`
	TransactionIndex int64         `json:"transaction_index"`
	Type             *int64        `json:"type"`
	Logs             []ContractLog `json:"logs"`
}

// Succeeded reports whether the call completed without reverting.
func (r ContractResult) Succeeded() bool {
	return r.Status == "0x1" || r.Result == "SUCCESS"
}

type ContractLog struct {
	Address          string   `json:"address"`
	BlockHash        string   `json:"block_hash"`
	BlockNumber      int64    `json:"block_number"`
	ContractID       string   `json:"contract_id"`
	Data             string   `json:"data"`
	Index            int64    `json:"index"`
	Topics           []string `json:"topics"`
	TransactionHash  string   `json:"transaction_hash"`
	TransactionIndex int64    `json:"transaction_index"`
}

// SkippedLog is a log entry ToReceipt could not convert.
type SkippedLog struct {
	Index int64
	Err   error
}

type LogQueryOptions struct {
	Timestamp string
	Topic0    string
	Limit     int
	Order     string
}

type contractLogsResponse struct {
	Logs  []ContractLog `json:"logs"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}
