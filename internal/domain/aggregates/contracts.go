package aggregates

// WriteTxOwnership says who opens the transaction a write runs in.
type WriteTxOwnership string

const (
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	WriteTxJoinsCaller      WriteTxOwnership = "caller_owned"
)

// LockScope names what concurrent writes of an aggregate serialize on.
type LockScope string

const (
	LockNone LockScope = ""
	// LockProject serializes on the project row and its in-process mutex.
	LockProject LockScope = "project"
)

// Contract describes the transactional behavior of a workflow aggregate.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	Serializes       LockScope
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

func (c Contract) SerializesPerProject() bool {
	return c.Serializes == LockProject
}
