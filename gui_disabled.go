//go:build !gui

package main

import "errors"

func runGUI(*app) error {
	return errors.New("built without GUI support (rebuild with -tags gui)")
}
