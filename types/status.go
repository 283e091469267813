package types

// TxStatus is the status of a transaction on the signing network.
type TxStatus string

const (
	TxStatusNil        TxStatus = "nil"
	TxStatusConfirming TxStatus = "confirming"
	TxStatusPending    TxStatus = "pending"
	TxStatusExecuting  TxStatus = "executing"
	TxStatusReverted   TxStatus = "reverted"
	TxStatusDone       TxStatus = "done"
)

func (s TxStatus) Final() bool {
	return s == TxStatusDone || s == TxStatusReverted
}

// Family is the account model of a chain.
type Family string

const (
	FamilyEvm     Family = "evm"
	FamilySolana  Family = "solana"
	FamilyUtxo    Family = "utxo"
	FamilyCardano Family = "cardano"
)

// UtxoModel returns true for chains where settlement can only be verified by address history.
func (f Family) UtxoModel() bool {
	return f == FamilyUtxo || f == FamilyCardano
}
