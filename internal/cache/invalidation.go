package cache

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Mutation is a kind of write that can make cached reads stale
type Mutation int

const (
	DishCreated Mutation = iota + 1
	DishUpdated
	DishDeleted
	OrderCreated
	OrderCompleted
	ReviewSubmitted
	DishReviewSubmitted
)

func (m Mutation) String() string {
	switch m {
	case DishCreated:
		return "dish_created"
	case DishUpdated:
		return "dish_updated"
	case DishDeleted:
		return "dish_deleted"
	case OrderCreated:
		return "order_created"
	case OrderCompleted:
		return "order_completed"
	case ReviewSubmitted:
		return "review_submitted"
	case DishReviewSubmitted:
		return "dish_review_submitted"
	default:
		return "mutation(" + strconv.Itoa(int(m)) + ")"
	}
}

// invalidationTable lists the key patterns each mutation must remove.
// {dish}, {order} and {user} are filled from the Scope of the write.
var invalidationTable = map[Mutation][]string{
	DishCreated:         {"dishes:list:*"},
	DishUpdated:         {"dishes:detail:{dish}", "dishes:list:*", "orders:*:items", "reviews:list:*", "reports:monthly:*"},
	DishDeleted:         {"dishes:detail:{dish}", "dishes:list:*", "dishes:{dish}:reviews"},
	OrderCreated:        {"users:{user}:orders", "reports:monthly:*"},
	OrderCompleted:      {"reports:monthly:*"},
	ReviewSubmitted:     {"reports:monthly:*"},
	DishReviewSubmitted: {"dishes:{dish}:reviews", "reviews:list:*", "reports:monthly:*"},
}

// Scope identifies the entities touched by a write
type Scope struct {
	DishIDs []uint
	OrderID uint
	UserID  uint
}

// Keys expands the invalidation table entry of m for scope.
// Patterns whose placeholders have no value in scope are skipped.
func Keys(m Mutation, scope Scope) []string {
	var keys []string
	for _, pattern := range invalidationTable[m] {
		keys = append(keys, expand(pattern, scope)...)
	}
	return keys
}

func expand(pattern string, scope Scope) []string {
	if strings.Contains(pattern, "{order}") {
		if scope.OrderID == 0 {
			return nil
		}
		pattern = strings.ReplaceAll(pattern, "{order}", strconv.FormatUint(uint64(scope.OrderID), 10))
	}
	if strings.Contains(pattern, "{user}") {
		if scope.UserID == 0 {
			return nil
		}
		pattern = strings.ReplaceAll(pattern, "{user}", strconv.FormatUint(uint64(scope.UserID), 10))
	}
	if !strings.Contains(pattern, "{dish}") {
		return []string{pattern}
	}
	keys := make([]string, 0, len(scope.DishIDs))
	for _, id := range scope.DishIDs {
		keys = append(keys, strings.ReplaceAll(pattern, "{dish}", strconv.FormatUint(uint64(id), 10)))
	}
	return keys
}

// Invalidator removes stale keys after writes
type Invalidator struct {
	cache Cache
}

func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Invalidate removes every key m may have made stale. Backend errors are
// logged; the write that triggered the call has already succeeded.
func (inv *Invalidator) Invalidate(ctx context.Context, m Mutation, scope Scope) {
	for _, key := range Keys(m, scope) {
		var err error
		if strings.ContainsAny(key, "*?[") {
			err = inv.cache.DeletePattern(ctx, key)
		} else {
			err = inv.cache.Delete(ctx, key)
		}
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"mutation":  m.String(),
				"cache_key": key,
			}).Error("Cache invalidation failed")
		}
	}
}
