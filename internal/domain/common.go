package domain

// Side represents the direction of a trade (BUY or SELL).
type Side string

const (
	Buy  Side = "BUY"  // Long entry: profits when price rises
	Sell Side = "SELL" // Short entry: profits when price falls
)

// IsValid reports whether the side is one of the known directions.
func (s Side) IsValid() bool {
	return s == Buy || s == Sell
}

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// IsValid reports whether the status is one of the known states.
func (s TradeStatus) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}
