package util

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// GCD folds the greatest common divisor over nums left to right. Zeros and
// duplicates are ignored; ok is false when nothing is left.
func GCD[A constraints.Integer](nums ...A) (res A, ok bool) {
	for _, v := range nums {
		if v < 0 {
			v = -v
		}
		if v == 0 {
			continue
		}
		if !ok {
			res, ok = v, true
			continue
		}
		a, b := res, v
		for b != 0 {
			a, b = b, a%b
		}
		res = a
	}
	return res, ok
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func Max[A constraints.Ordered](first A, rest ...A) A {
	res := first
	for _, v := range rest {
		if v > res {
			res = v
		}
	}
	return res
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

// Unique drops repeated values, keeping the first occurrence.
func Unique[A comparable](values []A) []A {
	seen := make(map[A]bool, len(values))
	var res []A
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		res = append(res, v)
	}
	return res
}

// GatherPaths walks root and returns every file whose name ends with one of
// suffixes. A non-zero maxNum caps the result.
func GatherPaths(root string, maxNum int, suffixes ...string) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(s, suffix) {
				if maxNum == 0 || len(res) < maxNum {
					res = append(res, s)
				}
				break
			}
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, err
	}
	return res, nil
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0777)
}
