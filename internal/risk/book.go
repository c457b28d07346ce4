package risk

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"MarketConfluence/internal/model"
)

// Book tracks open positions with concurrency safety and answers correlation queries.
type Book struct {
	mu       sync.Mutex
	state    *model.BookState
	filePath string
	groups   map[string]int
}

// NewBook creates a Book, loading state from disk when filePath is set.
// Symbols in the same group are treated as correlated.
func NewBook(filePath string, groups [][]string) (*Book, error) {
	state := &model.BookState{}
	if filePath != "" {
		s, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load position book: %w", err)
		}
		state = s
	}

	b := &Book{state: state, filePath: filePath, groups: make(map[string]int)}
	for i, g := range groups {
		for _, sym := range g {
			b.groups[strings.ToUpper(sym)] = i
		}
	}
	return b, nil
}

// Positions returns a copy of the open positions.
func (b *Book) Positions() []model.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Position(nil), b.state.Positions...)
}

// Open records a new position, replacing any existing one on the same symbol.
func (b *Book) Open(p model.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p.Symbol = strings.ToUpper(p.Symbol)
	kept := b.state.Positions[:0]
	for _, existing := range b.state.Positions {
		if existing.Symbol != p.Symbol {
			kept = append(kept, existing)
		}
	}
	b.state.Positions = append(kept, p)

	if err := b.save(); err != nil {
		log.Printf("[ERROR] failed to save position book: %v", err)
	}
}

// Close removes the position on symbol and reports whether one was open.
func (b *Book) Close(symbol string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	found := false
	kept := b.state.Positions[:0]
	for _, p := range b.state.Positions {
		if p.Symbol == symbol {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	b.state.Positions = kept
	if !found {
		return false
	}

	if err := b.save(); err != nil {
		log.Printf("[ERROR] failed to save position book after close: %v", err)
	}
	return true
}

// HasCorrelated reports whether symbol itself or a symbol in its group is open.
func (b *Book) HasCorrelated(symbol string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	group, grouped := b.groups[symbol]
	for _, p := range b.state.Positions {
		if p.Symbol == symbol {
			return true
		}
		if g, ok := b.groups[p.Symbol]; ok && grouped && g == group {
			return true
		}
	}
	return false
}

func (b *Book) save() error {
	if b.filePath == "" {
		return nil
	}
	return SaveState(b.filePath, b.state)
}
