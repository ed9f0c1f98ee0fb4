package pure_utils

import (
	"github.com/hashicorp/go-set/v2"
)

func ContainsSameElements[T comparable](a, b []T) bool {
	return set.From(a).Equal(set.From(b))
}

// Deduplicate keeps the first occurrence of each element, preserving order.
func Deduplicate[T comparable](items []T) []T {
	seen := set.New[T](len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if seen.Insert(item) {
			out = append(out, item)
		}
	}
	return out
}

func ToAnySlice[T any](input []T) []any {
	output := make([]any, len(input))
	for idx, value := range input {
		output[idx] = value
	}
	return output
}
