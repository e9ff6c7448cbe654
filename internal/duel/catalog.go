package duel

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultItems é o catálogo inicial semeado na primeira migração.
func DefaultItems() []Item {
	return []Item{
		{Code: "ROSE", Title: "Rose", Value: 5},
		{Code: "COOKIE", Title: "Cookie", Value: 10},
		{Code: "BOX", Title: "Gift box", Value: 25},
		{Code: "STAR", Title: "Superstar", Value: 100},
	}
}

// Catalog é a consulta somente leitura das definições de itens.
type Catalog struct {
	items  []Item
	byCode map[string]Item
}

// NewCatalog valida e indexa os itens. Códigos ficam em maiúsculas.
func NewCatalog(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("catalog: at least one item required")
	}
	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		byCode: make(map[string]Item, len(items)),
	}
	for _, it := range items {
		it.Code = normalizeCode(it.Code)
		if it.Code == "" {
			return nil, errors.New("catalog: empty item code")
		}
		if it.Value < 0 {
			return nil, fmt.Errorf("catalog: negative value for %s", it.Code)
		}
		if _, dup := c.byCode[it.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate code %s", it.Code)
		}
		c.items = append(c.items, it)
		c.byCode[it.Code] = it
	}
	return c, nil
}

// Lookup busca um item pelo código, sem diferenciar maiúsculas.
func (c *Catalog) Lookup(code string) (Item, bool) {
	it, ok := c.byCode[normalizeCode(code)]
	return it, ok
}

// ItemValue retorna o valor em stars de uma unidade do código.
func (c *Catalog) ItemValue(code string) (int64, error) {
	it, ok := c.Lookup(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, code)
	}
	return it.Value, nil
}

// Value soma quantidade × valor unitário dos itens.
func (c *Catalog) Value(items Items) (int64, error) {
	var total int64
	for _, iq := range items {
		v, err := c.ItemValue(iq.Code)
		if err != nil {
			return 0, err
		}
		total += v * iq.Qty
	}
	return total, nil
}

// Items retorna uma cópia das definições na ordem de seed.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Cheapest retorna o item de menor valor; empate fica com o primeiro do seed.
func (c *Catalog) Cheapest() Item {
	best := c.items[0]
	for _, it := range c.items[1:] {
		if it.Value < best.Value {
			best = it
		}
	}
	return best
}

// cheapestIn escolhe o item conhecido mais barato com qty > 0 no pool,
// empate resolvido pela primeira ocorrência.
func (c *Catalog) cheapestIn(pooled Items) (Item, bool) {
	var (
		best  Item
		found bool
	)
	for _, iq := range pooled {
		if iq.Qty <= 0 {
			continue
		}
		it, ok := c.Lookup(iq.Code)
		if !ok {
			continue
		}
		if !found || it.Value < best.Value {
			best, found = it, true
		}
	}
	return best, found
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
