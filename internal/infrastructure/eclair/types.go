package eclair

// Wire types for the subset of the eclair API the adapter consumes.
// Amounts are millisatoshi throughout.

const (
	getInfoCmd         = "getinfo"
	createInvoiceCmd   = "createinvoice"
	parseInvoiceCmd    = "parseinvoice"
	payInvoiceCmd      = "payinvoice"
	getSentInfoCmd     = "getsentinfo"
	getReceivedInfoCmd = "getreceivedinfo"
	findRouteCmd       = "findroute"
)

// paymentRequest is returned by createinvoice and parseinvoice, and
// embedded in sent/received records.
type paymentRequest struct {
	Prefix             string `json:"prefix"`
	Serialized         string `json:"serialized"`
	Description        string `json:"description"`
	PaymentHash        string `json:"paymentHash"`
	NodeID             string `json:"nodeId"`
	Amount             uint64 `json:"amount"`
	Expiry             int64  `json:"expiry"`
	MinFinalCltvExpiry int64  `json:"minFinalCltvExpiry"`
	Timestamp          int64  `json:"timestamp"`
}

type nodeInfo struct {
	NodeID      string `json:"nodeId"`
	Alias       string `json:"alias"`
	BlockHeight int64  `json:"blockHeight"`
	Version     string `json:"version"`
}

type partFailure struct {
	FailureMessage string `json:"failureMessage"`
}

type partStatus struct {
	Type            string        `json:"type"`
	PaymentPreimage string        `json:"paymentPreimage"`
	FeesPaid        uint64        `json:"feesPaid"`
	Failures        []partFailure `json:"failures"`
}

// sentPart is one routing attempt of a possibly multi-part payment, as
// reported by getsentinfo.
type sentPart struct {
	ID              string         `json:"id"`
	ParentID        string         `json:"parentId"`
	PaymentHash     string         `json:"paymentHash"`
	Amount          uint64         `json:"amount"`
	RecipientAmount uint64         `json:"recipientAmount"`
	RecipientNodeID string         `json:"recipientNodeId"`
	CreatedAt       int64          `json:"createdAt"`
	PaymentRequest  paymentRequest `json:"paymentRequest"`
	Status          partStatus     `json:"status"`
}

type receivedStatus struct {
	Type   string `json:"type"`
	Amount uint64 `json:"amount"`
}

type receivedInfo struct {
	PaymentRequest  paymentRequest `json:"paymentRequest"`
	PaymentPreimage string         `json:"paymentPreimage"`
	Status          receivedStatus `json:"status"`
}
