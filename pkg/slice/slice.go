// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice compliments the standard [slices] package by providing functional
programming utilities (Map, Filter, GroupBy) leveraging generics.
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter filters a slice, returning only elements where the predicate function evaluates to true.
//
// The result is never nil so that it encodes as an empty JSON array.
func Filter[T any](input []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// Flatten concatenates the inner slices in order.
func Flatten[T any](input [][]T) []T {
	total := 0
	for _, inner := range input {
		total += len(inner)
	}

	result := make([]T, 0, total)
	for _, inner := range input {
		result = append(result, inner...)
	}

	return result
}

// Bucket is one partition produced by [GroupBy].
type Bucket[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy partitions input by key. Buckets are returned in the order in which
// their key first occurs, and items keep their input order inside a bucket.
func GroupBy[T any, K comparable](input []T, key func(T) K) []Bucket[K, T] {
	var buckets []Bucket[K, T]
	index := make(map[K]int)

	for _, v := range input {
		k := key(v)
		position, found := index[k]
		if !found {
			position = len(buckets)
			index[k] = position
			buckets = append(buckets, Bucket[K, T]{Key: k})
		}
		buckets[position].Items = append(buckets[position].Items, v)
	}

	return buckets
}
