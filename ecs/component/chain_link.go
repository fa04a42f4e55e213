package component

// ChainLink names an entity's place in a built chain.
type ChainLink struct {
	Chain string
	Name  string
	// Index is the link index in the chain, 0 for the root anchor.
	Index int
	// Parent is the parent link index, -1 for the root anchor.
	Parent int
}

var ChainLinkComponent = NewComponent[ChainLink]()
