package chain

// BlockChain is an interface that represents a chain the dashboard is connected to.
type BlockChain interface {
	// String returns chain name and chain ID "<name> (<chain id>)"
	String() string
	// Name returns the name of the network
	Name() string
	Family() string
}
