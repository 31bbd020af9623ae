package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/satsagent/pkg/id"
)

// Sim is an in-memory exchange for dry runs and tests. Market orders fill
// instantly at the configured mark price; closing a position realizes
// size * (mark - entry) for longs and the negation for shorts.
type Sim struct {
	mu        sync.Mutex
	markets   map[string]MarketInfo
	positions map[string]*Position
	orders    int
}

// NewSim creates an empty simulated exchange. Seed it with SetMarket before
// trading.
func NewSim() *Sim {
	return &Sim{
		markets:   make(map[string]MarketInfo),
		positions: make(map[string]*Position),
	}
}

// SetMarket installs or updates the market snapshot for a symbol. Open
// positions are re-marked against the new price.
func (s *Sim) SetMarket(info MarketInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markets[info.Symbol] = info
	if pos, ok := s.positions[info.Symbol]; ok {
		pos.MarkPrice = info.MarkPrice
		pos.UnrealizedPnL = pos.Size * (info.MarkPrice - pos.EntryPrice)
	}
}

func (s *Sim) GetMarketInfo(ctx context.Context, symbol string) (MarketInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.markets[symbol]
	if !ok {
		return MarketInfo{}, &Error{Op: "market info", Detail: fmt.Sprintf("no market for %s", symbol)}
	}
	return info, nil
}

func (s *Sim) GetPositions(ctx context.Context) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Position
	for _, pos := range s.positions {
		out = append(out, *pos)
	}
	return out, nil
}

func (s *Sim) PlaceOrder(ctx context.Context, symbol string, isBuy bool, size float64, orderType string) (OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.markets[symbol]
	if !ok {
		return OrderResult{}, &Error{Op: "place order", Detail: fmt.Sprintf("no market for %s", symbol)}
	}
	if size <= 0 {
		return OrderResult{}, &Error{Op: "place order", Detail: "size must be positive"}
	}

	signed := size
	side := "buy"
	if !isBuy {
		signed = -size
		side = "sell"
	}

	if pos, ok := s.positions[symbol]; ok {
		pos.Size += signed
		if pos.Size == 0 {
			delete(s.positions, symbol)
		} else {
			pos.UnrealizedPnL = pos.Size * (info.MarkPrice - pos.EntryPrice)
		}
	} else {
		s.positions[symbol] = &Position{
			Symbol:     symbol,
			Size:       signed,
			EntryPrice: info.MarkPrice,
			MarkPrice:  info.MarkPrice,
			Leverage:   1,
		}
	}

	s.orders++
	return OrderResult{
		OrderID: id.New(),
		Symbol:  symbol,
		Side:    side,
		Size:    size,
		Status:  "filled",
	}, nil
}

func (s *Sim) CloseAllPositions(ctx context.Context, symbol string) ([]OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[symbol]
	if !ok {
		return nil, nil
	}

	side := "sell"
	if pos.Size < 0 {
		side = "buy"
	}
	delete(s.positions, symbol)

	s.orders++
	return []OrderResult{{
		OrderID: id.New(),
		Symbol:  symbol,
		Side:    side,
		Size:    abs(pos.Size),
		Status:  "filled",
	}}, nil
}

func (s *Sim) IsConnected(ctx context.Context) bool { return true }

func (s *Sim) Close() error { return nil }
