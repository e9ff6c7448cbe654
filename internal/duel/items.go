package duel

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemQty é a quantidade de um código de item.
type ItemQty struct {
	Code string
	Qty  int64
}

// Items é um mapa código→quantidade ordenado pela primeira aparição.
type Items []ItemQty

// ParseItems lê o formato compacto "CODE:QTY,CODE:QTY". Códigos não diferenciam
// maiúsculas e duplicados são somados. Toda quantidade deve ser positiva.
func ParseItems(blob string) (Items, error) {
	var items Items
	for _, part := range strings.Split(blob, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, qtyStr, ok := strings.Cut(part, ":")
		code = normalizeCode(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("%w: malformed entry %q", ErrInvalidStake, part)
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(qtyStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad quantity in %q", ErrInvalidStake, part)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive in %q", ErrInvalidStake, part)
		}
		items = items.add(code, qty)
	}
	return items, nil
}

// Normalize coloca códigos em maiúsculas e soma duplicados, mantendo a ordem.
func (it Items) Normalize() Items {
	var out Items
	for _, iq := range it {
		out = out.add(normalizeCode(iq.Code), iq.Qty)
	}
	return out
}

// Merge soma other numa cópia de it.
func (it Items) Merge(other Items) Items {
	out := it.Normalize()
	for _, iq := range other {
		out = out.add(normalizeCode(iq.Code), iq.Qty)
	}
	return out
}

// Qty retorna a quantidade do código.
func (it Items) Qty(code string) int64 {
	code = normalizeCode(code)
	for _, iq := range it {
		if iq.Code == code {
			return iq.Qty
		}
	}
	return 0
}

// String gera o formato compacto armazenado.
func (it Items) String() string {
	parts := make([]string, 0, len(it))
	for _, iq := range it {
		parts = append(parts, iq.Code+":"+strconv.FormatInt(iq.Qty, 10))
	}
	return strings.Join(parts, ",")
}

func (it Items) add(code string, qty int64) Items {
	for i := range it {
		if it[i].Code == code {
			it[i].Qty += qty
			return it
		}
	}
	return append(it, ItemQty{Code: code, Qty: qty})
}
