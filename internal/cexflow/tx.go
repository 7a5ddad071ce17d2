package cexflow

// Transaction is the minimal view of an Ethereum transaction the flow engine
// needs: its endpoints and raw value. The value is kept in its wire encoding
// and parsed exactly during aggregation; To is empty for contract-creation
// transactions.
type Transaction struct {
	Hash     string // unique transaction hash identifier
	From     string // sender address
	To       string // recipient address, empty when absent
	ValueWei string // transfer value in wei, in the deployment's wire format
}
