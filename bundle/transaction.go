package bundle

import (
	"github.com/LerianStudio/lib-tangle/node"
	"github.com/LerianStudio/lib-tangle/trinary"
)

// Transaction is one member of a bundle.
type Transaction struct {
	Hash         trinary.Hash
	Address      trinary.Address
	BundleHash   trinary.Hash
	Value        int64
	CurrentIndex int
	LastIndex    int
	Timestamp    int64
	Tag          trinary.Trytes

	// Confirmed is nil until an inclusion-state lookup annotates the
	// transaction.
	Confirmed *bool
}

// fromRecord converts a node record into a Transaction.
func fromRecord(rec node.TransactionRecord) Transaction {
	return Transaction{
		Hash:         rec.Hash,
		Address:      rec.Address,
		BundleHash:   rec.BundleHash,
		Value:        rec.Value,
		CurrentIndex: rec.CurrentIndex,
		LastIndex:    rec.LastIndex,
		Timestamp:    rec.Timestamp,
		Tag:          rec.Tag,
	}
}

// Bundle is an ordered, internally consistent group of transactions
// sharing one bundle hash. Transactions are ordered by current index.
type Bundle struct {
	Hash         trinary.Hash
	Transactions []Transaction
}
