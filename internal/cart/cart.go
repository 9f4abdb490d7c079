package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Cart maps a dish id to a positive quantity.
// Entries never hold zero: removing the last unit deletes the entry.
type Cart map[uint]int

// New returns an empty cart
func New() Cart {
	return Cart{}
}

// Add increments the quantity of dishID by one
func (c Cart) Add(dishID uint) {
	c[dishID]++
}

// Remove decrements the quantity of dishID and deletes the entry at zero.
// It reports whether the dish was in the cart.
func (c Cart) Remove(dishID uint) bool {
	qty, ok := c[dishID]
	if !ok {
		return false
	}
	if qty <= 1 {
		delete(c, dishID)
		return true
	}
	c[dishID] = qty - 1
	return true
}

// Drop deletes the entry for dishID regardless of quantity
func (c Cart) Drop(dishID uint) {
	delete(c, dishID)
}

// Quantity returns the quantity of dishID, zero when absent
func (c Cart) Quantity(dishID uint) int {
	return c[dishID]
}

// Len returns the total number of units across all dishes
func (c Cart) Len() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}

// IsEmpty reports whether the cart holds no entries
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// DishIDs returns the dish ids in ascending order
func (c Cart) DishIDs() []uint {
	ids := make([]uint, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Encode serializes the cart to its session form {"<dish id>": quantity}
func (c Cart) Encode() ([]byte, error) {
	raw := make(map[string]int, len(c))
	for id, qty := range c {
		if qty < 1 {
			continue
		}
		raw[strconv.FormatUint(uint64(id), 10)] = qty
	}
	return json.Marshal(raw)
}

// Decode parses the session form of a cart.
// Keys that are not dish ids and quantities below one are dropped.
func Decode(data []byte) (Cart, error) {
	c := New()
	if len(data) == 0 {
		return c, nil
	}
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	for key, qty := range raw {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 || qty < 1 {
			continue
		}
		c[uint(id)] = qty
	}
	return c, nil
}
