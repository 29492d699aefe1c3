//
// Copyright (C) 2022 IBM Corporation.
//
// Authors:
// Frederico Araujo <frederico.araujo@ibm.com>
// Teryl Taylor <terylt@ibm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package waker provides an interface for a routine waker.
// Adapted from https://github.com/google/mtail/tree/main/internal
package waker

// alwaysWaker is the Trigger test double used throughout the tailer test
// suite: it never blocks the wakee, so a test can drive a file through
// several append/rotate steps and let the tailer's read loop race ahead at
// full speed instead of waiting out a real poll interval.
type alwaysWaker struct {
	wake chan struct{}
}

// NewTestAlways returns a Waker whose Wake() channel is always already
// closed.
func NewTestAlways() Waker {
	w := &alwaysWaker{
		wake: make(chan struct{}),
	}
	close(w.wake)
	return w
}

func (w *alwaysWaker) Wake() <-chan struct{} {
	return w.wake
}
