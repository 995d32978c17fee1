/*
* Copyright 2022-2026 Thorsten A. Knieling
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at
*
*    http://www.apache.org/licenses/LICENSE-2.0
*
 */

package common

import "strings"

// Direction navigation direction of a set or area request
type Direction byte

const (
	First Direction = iota
	Next
	Prior
	Last
	Current
)

var directionNames = []string{"FIRST", "NEXT", "PRIOR", "LAST", "CURRENT"}

func (d Direction) String() string {
	return directionNames[d]
}

// ParseDirection parse direction name
func ParseDirection(name string) (Direction, bool) {
	for i, n := range directionNames {
		if strings.EqualFold(n, name) {
			return Direction(i), true
		}
	}
	return Current, false
}

// Reverse swap FIRST with LAST and NEXT with PRIOR
func (d Direction) Reverse() Direction {
	switch d {
	case First:
		return Last
	case Last:
		return First
	case Next:
		return Prior
	case Prior:
		return Next
	}
	return d
}

// Backward direction reads the set in reverse logical order
func (d Direction) Backward() bool {
	return d == Prior || d == Last
}

// Step cursor step in the row cache
func (d Direction) Step() int {
	if d.Backward() {
		return -1
	}
	return 1
}
