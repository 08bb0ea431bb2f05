package utils

import (
	"fmt"
	"os"

	"github.com/maddsua/minitar"
)

func SelectValue[T any](filter func(val T) bool, opts ...T) (val T) {
	for _, val := range opts {
		if filter(val) {
			return val
		}
	}
	return
}

func SelectString(opts ...string) string {
	return SelectValue(func(val string) bool {
		return val != ""
	}, opts...)
}

// ValidateMembers checks that every member path points at a regular file
// before any archive gets touched.
func ValidateMembers(names []string) error {

	for _, name := range names {

		stat, err := os.Stat(name)
		if err != nil {
			return &minitar.MetadataError{Path: name, Err: err}
		}

		if !stat.Mode().IsRegular() {
			return &minitar.MetadataError{Path: name, Err: fmt.Errorf("not a regular file")}
		}
	}

	return nil
}
