// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu registers the CPU backend with the tensor device registry.
//
// Import it for its side effect:
//
//	import _ "github.com/axon-ml/axon/backend/cpu"
//
// Importing makes device cpu:0 available and, absent other registrations,
// the process default device.
package cpu

import (
	"k8s.io/klog/v2"

	internalcpu "github.com/axon-ml/axon/internal/backend/cpu"
	"github.com/axon-ml/axon/tensor"
)

// Backend implements creation ops on host memory.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates an unregistered CPU backend for device cpu:0. Most callers rely
// on the import side effect instead.
func New() *Backend {
	return internalcpu.New()
}

// NewWithOrdinal creates an unregistered CPU backend for device cpu:ordinal.
func NewWithOrdinal(ordinal int) *Backend {
	return internalcpu.NewWithOrdinal(ordinal)
}

func init() {
	if err := tensor.RegisterBackend(internalcpu.New()); err != nil {
		klog.Errorf("cpu: backend registration failed: %v", err)
	}
}
