package domain

// ChannelType is the pricing segment of a customer.
type ChannelType string

const (
	ChannelLogistics ChannelType = "logistics"
	ChannelDealer    ChannelType = "dealer"
)

func (c ChannelType) Valid() bool {
	return c == ChannelLogistics || c == ChannelDealer
}

// String representation (for logging)
func (c ChannelType) String() string {
	return string(c)
}
